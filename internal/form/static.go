package form

import "sync"

type Choice struct {
	Value   string
	Checked bool
}

// StaticForm is an in-memory form. It is safe for concurrent use, so values
// can be edited while a submission reads them.
type StaticForm struct {
	mu         sync.RWMutex
	values     map[string]string
	checkboxes map[string]bool
	groups     map[string][]Choice
}

func NewStaticForm() *StaticForm {
	return &StaticForm{
		values:     make(map[string]string),
		checkboxes: make(map[string]bool),
		groups:     make(map[string][]Choice),
	}
}

func (f *StaticForm) SetValue(id, value string) *StaticForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[id] = value
	return f
}

func (f *StaticForm) SetChecked(id string, checked bool) *StaticForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkboxes[id] = checked
	return f
}

// AddChoice appends an option to the group. Checking an option unchecks the
// others, like a radio group does.
func (f *StaticForm) AddChoice(group, value string, checked bool) *StaticForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	if checked {
		for i := range f.groups[group] {
			f.groups[group][i].Checked = false
		}
	}
	f.groups[group] = append(f.groups[group], Choice{Value: value, Checked: checked})
	return f
}

// Check marks value as the checked option of the group.
func (f *StaticForm) Check(group, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for i := range f.groups[group] {
		f.groups[group][i].Checked = f.groups[group][i].Value == value
		found = found || f.groups[group][i].Checked
	}
	return found
}

func (f *StaticForm) FieldValue(id string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	value, ok := f.values[id]
	if !ok {
		return "", fieldNotFound(id)
	}
	return value, nil
}

func (f *StaticForm) Checked(id string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	checked, ok := f.checkboxes[id]
	if !ok {
		return false, fieldNotFound(id)
	}
	return checked, nil
}

func (f *StaticForm) CheckedChoice(group string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	choices, ok := f.groups[group]
	if !ok || len(choices) == 0 {
		return "", fieldNotFound(group)
	}

	var checked []string
	for _, c := range choices {
		if c.Checked {
			checked = append(checked, c.Value)
		}
	}
	return pickChoice(group, checked)
}
