package autocapture

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/fsutil"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	entries []fsutil.Entry
	err     error
}

func (f fakeLister) ListSubdirs(string) ([]fsutil.Entry, error) {
	return f.entries, f.err
}

func workspaces(pairs ...string) *node.Mapping {
	m := node.NewMapping()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], node.Str(pairs[i+1]))
	}
	return m
}

func TestCapture(t *testing.T) {
	testCases := []struct {
		name     string
		explicit *node.Mapping
		entries  []fsutil.Entry
		expected *node.Mapping
	}{
		{
			name:     "adds discovered directories",
			explicit: workspaces(),
			entries:  []fsutil.Entry{{Name: "api", Path: "/repo/api"}, {Name: "web", Path: "/repo/web"}},
			expected: workspaces("api", "/repo/api", "web", "/repo/web"),
		},
		{
			name:     "skips a name that is already a key",
			explicit: workspaces("api", "/repo/services/api"),
			entries:  []fsutil.Entry{{Name: "api", Path: "/repo/api"}, {Name: "web", Path: "/repo/web"}},
			expected: workspaces("api", "/repo/services/api", "web", "/repo/web"),
		},
		{
			name:     "skips a path that is already a value",
			explicit: workspaces("backend", "/repo/api"),
			entries:  []fsutil.Entry{{Name: "api", Path: "/repo/api"}},
			expected: workspaces("backend", "/repo/api"),
		},
		{
			name:     "ignores hidden directories",
			explicit: workspaces(),
			entries:  []fsutil.Entry{{Name: ".git", Path: "/repo/.git"}, {Name: "docs", Path: "/repo/docs"}},
			expected: workspaces("docs", "/repo/docs"),
		},
		{
			name:     "replaces spaces in names",
			explicit: workspaces(),
			entries:  []fsutil.Entry{{Name: "my tools", Path: "/repo/my tools"}},
			expected: workspaces("my-tools", "/repo/my tools"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Capture(context.Background(), "/repo", tc.explicit, fakeLister{entries: tc.entries})

			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(tc.explicit), "got %s", node.Map(tc.explicit))
		})
	}
}

func TestCapture_WarnsOnConflict(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ws := workspaces("api", "/repo/services/api")
	err := Capture(ctx, "/repo", ws, fakeLister{entries: []fsutil.Entry{{Name: "api", Path: "/repo/api"}}})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "key=api")
}

func TestCapture_ListError(t *testing.T) {
	listErr := errors.New("permission denied")

	err := Capture(context.Background(), "/repo", workspaces(), fakeLister{err: listErr})

	assert.ErrorIs(t, err, listErr)
}

func TestCapture_RealDirectory(t *testing.T) {
	dir := t.TempDir()
	ws := workspaces()

	require.NoError(t, Capture(context.Background(), dir, ws, fsutil.OS{}))

	assert.Equal(t, 0, ws.Len())
}
