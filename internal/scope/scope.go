// Package scope holds the result of resolving a command: the variables,
// working directory and task groups accumulated along the command path.
package scope

import (
	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

// TaskCollection is a group of shell tasks run in one directory.
type TaskCollection struct {
	// WorkingDir is an absolute path, a workspace reference, or empty when
	// the collection does not pick a directory.
	WorkingDir string   `yaml:"in,omitempty"`
	Tasks      []string `yaml:"tasks"`
	Background bool     `yaml:"background,omitempty"`
	Parallel   bool     `yaml:"parallel,omitempty"`
}

// CommandScope is the fully folded state for one command invocation.
type CommandScope struct {
	Variables  map[string]*node.Node `yaml:"variables,omitempty"`
	WorkingDir string                `yaml:"in,omitempty"`
	PreTasks   []TaskCollection      `yaml:"pre,omitempty"`
	Command    TaskCollection        `yaml:"command"`
	PostTasks  []TaskCollection      `yaml:"post,omitempty"`
}

// New returns an empty scope.
func New() *CommandScope {
	return &CommandScope{Variables: make(map[string]*node.Node)}
}

// Dir returns the directory the command runs in: its own working
// directory when set, the scope's otherwise.
func (s *CommandScope) Dir() string {
	if s.Command.WorkingDir != "" {
		return s.Command.WorkingDir
	}
	return s.WorkingDir
}

// SetVariable stores a variable value, replacing any previous value.
func (s *CommandScope) SetVariable(name string, value *node.Node) {
	if s.Variables == nil {
		s.Variables = make(map[string]*node.Node)
	}
	s.Variables[name] = value
}

// Accumulate folds the reserved keys of one canonical scope mapping into s.
// Values set here replace what earlier, shallower scopes set; reset keys
// clear a field until a deeper scope sets it again. The entry under command
// that carries tasks sets the command itself. Other keys are ignored.
func (s *CommandScope) Accumulate(path string, m *node.Mapping, command string, syn syntax.Syntax) error {
	for key, value := range m.All() {
		keyPath := cfgerr.Join(path, key)

		switch syn.Lookup(key) {
		case syntax.KeyVariables:
			if err := s.accumulateVariables(keyPath, value, syn); err != nil {
				return err
			}
		case syntax.KeyResetIn:
			s.WorkingDir = ""
		case syntax.KeyIn:
			dir, ok := value.AsString()
			if !ok {
				return cfgerr.Syntaxf(keyPath, "working directory must be a string, got %s", value.Kind())
			}
			s.WorkingDir = dir
		case syntax.KeyResetPre:
			s.PreTasks = nil
		case syntax.KeyResetPost:
			s.PostTasks = nil
		case syntax.KeyPre, syntax.KeyPost:
			tc, err := NewTaskCollection(keyPath, value, syn)
			if err != nil {
				return err
			}
			if syn.Lookup(key) == syntax.KeyPre {
				s.PreTasks = append(s.PreTasks, tc)
			} else {
				s.PostTasks = append(s.PostTasks, tc)
			}
		default:
			if key != command {
				continue
			}
			tm, ok := value.AsMapping()
			if !ok || !tm.Has(syn.Name(syntax.KeyTasks)) {
				continue
			}
			if err := s.accumulateCommand(keyPath, tm, syn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CommandScope) accumulateVariables(path string, value *node.Node, syn syntax.Syntax) error {
	vars, ok := value.AsMapping()
	if !ok {
		return cfgerr.Syntaxf(path, "variables must be a mapping, got %s", value.Kind())
	}
	valueKey := syn.Name(syntax.KeyValue)
	for name, wrapped := range vars.All() {
		wm, ok := wrapped.AsMapping()
		if !ok {
			return cfgerr.Syntaxf(cfgerr.Join(path, name), "variable must be a mapping with a %s key", valueKey)
		}
		v, ok := wm.Get(valueKey)
		if !ok {
			return cfgerr.Syntaxf(cfgerr.Join(path, name), "variable must be a mapping with a %s key", valueKey)
		}
		s.SetVariable(name, v.Clone())
	}
	return nil
}

func (s *CommandScope) accumulateCommand(path string, tm *node.Mapping, syn syntax.Syntax) error {
	tasks, err := taskList(path, tm, syn)
	if err != nil {
		return err
	}
	s.Command.Tasks = tasks

	switch {
	case tm.Has(syn.Name(syntax.KeyResetIn)):
		s.Command.WorkingDir = ""
	case tm.Has(syn.Name(syntax.KeyIn)):
		dir, err := stringField(path, tm, syn.Name(syntax.KeyIn))
		if err != nil {
			return err
		}
		s.Command.WorkingDir = dir
	}

	if s.Command.Background, err = flag(path, tm, s.Command.Background, syn, syntax.KeyBackground, syntax.KeyResetBackground); err != nil {
		return err
	}
	if s.Command.Parallel, err = flag(path, tm, s.Command.Parallel, syn, syntax.KeyParallel, syntax.KeyResetParallel); err != nil {
		return err
	}
	return nil
}

// NewTaskCollection builds a TaskCollection from a canonical task
// collection mapping.
func NewTaskCollection(path string, value *node.Node, syn syntax.Syntax) (TaskCollection, error) {
	tm, ok := value.AsMapping()
	if !ok {
		return TaskCollection{}, cfgerr.Syntaxf(path, "task collection must be a mapping, got %s", value.Kind())
	}
	tasks, err := taskList(path, tm, syn)
	if err != nil {
		return TaskCollection{}, err
	}

	tc := TaskCollection{Tasks: tasks}
	if tm.Has(syn.Name(syntax.KeyIn)) {
		if tc.WorkingDir, err = stringField(path, tm, syn.Name(syntax.KeyIn)); err != nil {
			return TaskCollection{}, err
		}
	}
	if tc.Background, err = flag(path, tm, false, syn, syntax.KeyBackground, syntax.KeyResetBackground); err != nil {
		return TaskCollection{}, err
	}
	if tc.Parallel, err = flag(path, tm, false, syn, syntax.KeyParallel, syntax.KeyResetParallel); err != nil {
		return TaskCollection{}, err
	}
	return tc, nil
}

func taskList(path string, tm *node.Mapping, syn syntax.Syntax) ([]string, error) {
	tasksKey := syn.Name(syntax.KeyTasks)
	v, _ := tm.Get(tasksKey)
	items, ok := v.AsSequence()
	if !ok {
		return nil, cfgerr.Syntaxf(path, "%s must be a sequence of strings", tasksKey)
	}
	tasks := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.AsString()
		if !ok {
			return nil, cfgerr.Syntaxf(path, "%s must be a sequence of strings", tasksKey)
		}
		tasks = append(tasks, s)
	}
	return tasks, nil
}

func stringField(path string, tm *node.Mapping, key string) (string, error) {
	v, _ := tm.Get(key)
	s, ok := v.AsString()
	if !ok {
		return "", cfgerr.Syntaxf(cfgerr.Join(path, key), "must be a string, got %s", v.Kind())
	}
	return s, nil
}

// flag returns the value of a boolean field: false when its reset key is
// present, the field's value when set, current otherwise.
func flag(path string, tm *node.Mapping, current bool, syn syntax.Syntax, set, reset syntax.Key) (bool, error) {
	if tm.Has(syn.Name(reset)) {
		return false, nil
	}
	v, ok := tm.Get(syn.Name(set))
	if !ok {
		return current, nil
	}
	b, ok := v.AsBool()
	if !ok {
		return false, cfgerr.Syntaxf(cfgerr.Join(path, syn.Name(set)), "must be a boolean, got %s", v.Kind())
	}
	return b, nil
}
