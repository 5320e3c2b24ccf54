package natsadapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/samirrijal/placeroute/internal/core/domain"
)

func TestSubjectFor(t *testing.T) {
	cases := map[domain.UIEventType]string{
		domain.EventInputRequest: SubjectUIInput,
		domain.EventPlaces:       SubjectUIPlaces,
		domain.EventMessage:      SubjectUIMessage,
	}
	for typ, want := range cases {
		if got := SubjectFor(typ); got != want {
			t.Errorf("SubjectFor(%s) = %s, want %s", typ, got, want)
		}
	}
}

func TestHandleInput_Dispatch(t *testing.T) {
	var gotTag domain.InputTag
	var gotContent string
	handler := func(ctx context.Context, tag domain.InputTag, content string) error {
		gotTag, gotContent = tag, content
		return nil
	}

	payload, _ := json.Marshal(domain.InputResponse{Tag: domain.TagAddNewPlace, Content: "bilbao"})
	reply := handleInput(context.Background(), payload, handler)

	if !reply.OK {
		t.Fatalf("expected ok reply, got %+v", reply)
	}
	if gotTag != domain.TagAddNewPlace || gotContent != "bilbao" {
		t.Errorf("handler got %s %q", gotTag, gotContent)
	}
}

func TestHandleInput_Errors(t *testing.T) {
	reply := handleInput(context.Background(), []byte("{"), nil)
	if reply.OK || reply.Code != "BAD_REQUEST" {
		t.Errorf("expected bad request, got %+v", reply)
	}

	notFound := func(context.Context, domain.InputTag, string) error { return domain.ErrNotFound }
	reply = handleInput(context.Background(), []byte(`{"tag":"nope"}`), notFound)
	if reply.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %+v", reply)
	}

	invalid := func(context.Context, domain.InputTag, string) error { return domain.ErrNoPendingPlace }
	reply = handleInput(context.Background(), []byte(`{"tag":"insert_position"}`), invalid)
	if reply.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", reply)
	}
}
