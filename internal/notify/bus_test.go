package notify

import (
	"testing"

	"go.uber.org/zap"
)

type recorder struct {
	msgs []string
}

func (r *recorder) Publish(channel, message string) {
	r.msgs = append(r.msgs, channel+"="+message)
}

func TestBusNotifyFiltersByMask(t *testing.T) {
	b := NewBus(zap.NewNop(), ClassGeneric|FlagKeyevent)
	rec := &recorder{}
	b.AddPublisher(rec)

	b.Notify(0, 'g', "del", "k") // class enabled
	b.Notify(0, 'l', "lpush", "k") // class disabled, should be dropped

	if len(rec.msgs) != 1 {
		t.Fatalf("msgs = %v, want exactly 1", rec.msgs)
	}
	if rec.msgs[0] != "__keyevent@0__:del=k" {
		t.Fatalf("msg = %q", rec.msgs[0])
	}
}

func TestBusNotifyBothChannels(t *testing.T) {
	b := NewBus(zap.NewNop(), ClassString|FlagKeyspace|FlagKeyevent)
	rec := &recorder{}
	b.AddPublisher(rec)

	b.Notify(2, '$', "set", "mykey")
	if len(rec.msgs) != 2 {
		t.Fatalf("msgs = %v, want 2", rec.msgs)
	}
}

func TestNotifyModuleBypassesMask(t *testing.T) {
	b := NewBus(zap.NewNop(), FlagKeyevent) // no classes enabled at all
	rec := &recorder{}
	b.AddPublisher(rec)

	b.NotifyModule(0, "custom-event", "k")
	if len(rec.msgs) != 1 {
		t.Fatalf("expected module notify to bypass the class mask, got %v", rec.msgs)
	}
}

func TestSetMaskTakesEffectImmediately(t *testing.T) {
	b := NewBus(zap.NewNop(), 0)
	rec := &recorder{}
	b.AddPublisher(rec)

	b.Notify(0, 'g', "del", "k")
	if len(rec.msgs) != 0 {
		t.Fatalf("expected no delivery before mask enables anything")
	}
	b.SetMask(ClassGeneric | FlagKeyevent)
	b.Notify(0, 'g', "del", "k")
	if len(rec.msgs) != 1 {
		t.Fatalf("expected delivery after SetMask, got %v", rec.msgs)
	}
}
