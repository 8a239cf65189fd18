package bus

import (
	"encoding/json"
	"testing"

	"github.com/yungbote/practice-backend/internal/realtime"
)

func TestDecode(t *testing.T) {
	raw, _ := json.Marshal(realtime.SSEMessage{Channel: "u1", Event: realtime.SSEEventGoalsReset, Data: map[string]any{"n": 2}})
	cases := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "valid", payload: string(raw)},
		{name: "garbage", payload: "{not json", wantErr: true},
		{name: "no channel", payload: `{"event":"GoalsReset"}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := decode(tc.payload)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || msg.Channel != "u1" || msg.Event != realtime.SSEEventGoalsReset {
				t.Fatalf("decode: %+v err=%v", msg, err)
			}
		})
	}
}

func TestNewRedisBusRequiresClient(t *testing.T) {
	if _, err := NewRedisBus(nil, nil, ""); err == nil {
		t.Fatalf("expected error without logger")
	}
}
