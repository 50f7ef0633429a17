package audit

import "testing"

func TestEmit(t *testing.T) {
	sink := &MemorySink{}
	Emit(sink, Record{UserID: "u1", Action: "branch.create", Success: true})

	records := sink.Records()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].At.IsZero() {
		t.Error("Emit did not stamp the timestamp")
	}
	if records[0].UserID != "u1" || records[0].Action != "branch.create" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestEmit_NilSink(t *testing.T) {
	// Must not panic.
	Emit(nil, Record{Action: "noop"})
}
