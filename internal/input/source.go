package input

// KeyReader reports whether a virtual key is currently down.
type KeyReader interface {
	KeyDown(vk int) bool
}

// State is the snapshot of user intent for one tick.
type State struct {
	Aim       bool
	Trigger   bool
	RapidFire bool
	Recoil    bool
	Reload    bool
}

type Bindings struct {
	Aim       *Binding
	Trigger   *Binding
	RapidFire *Binding
	Recoil    *Binding
	Reload    *Binding
	// Fire is the raw primary button, sampled without any mode.
	Fire int
}

// Source turns raw key states into a State. It is owned by a single session
// and is not safe for concurrent use.
type Source struct {
	keys     KeyReader
	bindings Bindings
}

func NewSource(keys KeyReader, bindings Bindings) *Source {
	if bindings.Reload != nil {
		bindings.Reload.Mode = ModePress
	}
	s := &Source{keys: keys, bindings: bindings}
	// A reload key still held from the previous session must not reload again.
	for _, b := range s.all() {
		if b.Bound() {
			b.seed(keys.KeyDown(b.VK))
		}
	}
	return s
}

func (s *Source) all() []*Binding {
	return []*Binding{s.bindings.Aim, s.bindings.Trigger, s.bindings.RapidFire, s.bindings.Recoil, s.bindings.Reload}
}

func (s *Source) poll(b *Binding) bool {
	if !b.Bound() {
		return false
	}
	return b.Update(s.keys.KeyDown(b.VK))
}

// Poll samples every binding once. Recoil compensation follows the aim state
// when no dedicated recoil key is bound.
func (s *Source) Poll() State {
	st := State{
		Reload:    s.poll(s.bindings.Reload),
		Aim:       s.poll(s.bindings.Aim),
		Trigger:   s.poll(s.bindings.Trigger),
		RapidFire: s.poll(s.bindings.RapidFire),
	}

	if s.bindings.Recoil.Bound() {
		st.Recoil = s.poll(s.bindings.Recoil)
	} else {
		st.Recoil = st.Aim
	}

	return st
}

// FireHeld reads the primary button directly, every call.
func (s *Source) FireHeld() bool {
	if s.bindings.Fire == 0 {
		return false
	}
	return s.keys.KeyDown(s.bindings.Fire)
}
