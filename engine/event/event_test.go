package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) Handle(arg int) {
	*r.log = append(*r.log, r.name)
}

func TestNotifyInAttachmentOrder(t *testing.T) {
	var log []string
	e := NewEvent[int]()
	e.Attach(recorder{"A", &log})
	e.Attach(recorder{"B", &log})
	e.Attach(recorder{"C", &log})

	e.Notify(1)

	assert.Equal(t, []string{"A", "B", "C"}, log)
}

func TestDuplicateAttachNotifiesTwice(t *testing.T) {
	calls := 0
	l := ListenerFunc[int](func(int) { calls++ })
	e := NewEvent[int]()
	e.Attach(l)
	e.Attach(l)

	e.Notify(0)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, e.Size())
}

func TestNotifyWithoutListeners(t *testing.T) {
	e := NewEvent[string]()
	assert.NotPanics(t, func() { e.Notify("nothing") })
	assert.Equal(t, 0, e.Size())
}

func TestPayloadIsPassedThrough(t *testing.T) {
	var got []int
	e := NewEvent[int]()
	e.AttachFunc(func(v int) { got = append(got, v) })

	e.Notify(3)
	e.Notify(7)

	assert.Equal(t, []int{3, 7}, got)
}

func TestAttachDuringNotifyDefersToNextRound(t *testing.T) {
	var log []string
	e := NewEvent[int]()
	e.AttachFunc(func(int) {
		log = append(log, "first")
		if len(log) == 1 {
			e.AttachFunc(func(int) { log = append(log, "late") })
		}
	})

	e.Notify(0)
	assert.Equal(t, []string{"first"}, log)

	e.Notify(0)
	assert.Equal(t, []string{"first", "first", "late"}, log)
}
