package observer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	events *[]string
	name   string
}

func (r recorder) Update(event string, data interface{}) {
	*r.events = append(*r.events, r.name+":"+event)
}

func TestNotifyInOrder(t *testing.T) {
	var events []string
	s := &Subject{}
	s.Notify("ignored", nil)
	s.Register(recorder{&events, "a"}, recorder{&events, "b"})
	s.Notify("attempt", 1)
	require.Equal(t, []string{"a:attempt", "b:attempt"}, events)
}
