package types

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeOK(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name string
		env  Envelope
		want bool
	}{
		{name: "explicit success", env: Envelope{Code: 500, Success: &yes}, want: true},
		{name: "explicit failure", env: Envelope{Code: 0, Success: &no}, want: false},
		{name: "zero code without flag", env: Envelope{Code: 0}, want: true},
		{name: "200 code without flag", env: Envelope{Code: 200}, want: true},
		{name: "error code without flag", env: Envelope{Code: 4001}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.env.OK(); got != tt.want {
				t.Errorf("OK() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvelopeDecodesRawData(t *testing.T) {
	raw := `{"code":0,"message":"Success","data":{"title":"t"},"success":true}`

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !env.OK() {
		t.Fatal("OK() = false, want true")
	}
	if string(env.Data) != `{"title":"t"}` {
		t.Errorf("Data = %s", env.Data)
	}
}

func TestPlatformAndStatusValid(t *testing.T) {
	if !PlatformWeibo.Valid() || !PlatformXiaohongshu.Valid() {
		t.Error("known platforms must be valid")
	}
	if Platform("douyin").Valid() {
		t.Error("douyin must not be valid")
	}
	if !StatusActive.Valid() || !StatusStopped.Valid() {
		t.Error("known statuses must be valid")
	}
	if TrackerStatus("paused").Valid() {
		t.Error("paused must not be valid")
	}
}
