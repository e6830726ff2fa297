package proto

import (
	"encoding/json"
	"testing"

	"corsairs/server/internal/sim"
)

func TestDecodeClientMessageDefaultsVersion(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"input","speed":3.5,"fire":true}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Ver != Version {
		t.Fatalf("expected default version %d, got %d", Version, msg.Ver)
	}
	if msg.Speed == nil || *msg.Speed != 3.5 || !msg.Fire {
		t.Fatalf("unexpected decoded fields: %+v", msg)
	}
}

func TestDecodeClientMessageRejectsBadPayloads(t *testing.T) {
	if _, err := DecodeClientMessage([]byte(`{"type":"input","ver":99}`)); err == nil {
		t.Fatalf("expected version mismatch error")
	}
	if _, err := DecodeClientMessage([]byte(`{"ver":1}`)); err == nil {
		t.Fatalf("expected missing type error")
	}
	if _, err := DecodeClientMessage([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClientCommandMapsAsyncKindsOnly(t *testing.T) {
	heading := 90.0
	cmd, ok := ClientCommand(ClientMessage{Type: TypeInput, Heading: &heading, Fire: true})
	if !ok || cmd.Type != sim.CommandInput {
		t.Fatalf("expected input command, got %+v ok=%v", cmd, ok)
	}
	if cmd.Input == nil || cmd.Input.Heading == nil || *cmd.Input.Heading != 90 || !cmd.Input.Fire {
		t.Fatalf("input payload lost fields: %+v", cmd.Input)
	}

	if _, ok := ClientCommand(ClientMessage{Type: TypeHeartbeat}); !ok {
		t.Fatalf("expected heartbeat to stage")
	}
	for _, kind := range []string{TypeJoin, TypeResume, TypeTrade, TypeScuttle, "bogus"} {
		if _, ok := ClientCommand(ClientMessage{Type: kind}); ok {
			t.Fatalf("kind %q must not stage a command", kind)
		}
	}
}

func TestEncodeRejectShape(t *testing.T) {
	data, err := EncodeReject(&sim.Reject{Class: sim.RejectConflict, Code: sim.CodeNameTaken, Message: "name already in use"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded["type"] != TypeError || decoded["code"] != sim.CodeNameTaken || decoded["class"] != "conflict" {
		t.Fatalf("unexpected wire shape: %v", decoded)
	}
}
