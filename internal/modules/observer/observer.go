package observer

type Observer interface {
	Update(event string, data interface{})
}

// Subject fans an event out to every registered observer, in registration order.
type Subject struct {
	observers []Observer
}

func (s *Subject) Register(o ...Observer) {
	s.observers = append(s.observers, o...)
}

func (s *Subject) Notify(event string, data interface{}) {
	for _, o := range s.observers {
		o.Update(event, data)
	}
}
