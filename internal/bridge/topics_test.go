package bridge

import (
	"errors"
	"testing"
)

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "cocoro"}

	if got := topics.State(1001); got != "cocoro/1001/state" {
		t.Errorf("State() = %v, want cocoro/1001/state", got)
	}
	if got := topics.Set(1001, AttrPower); got != "cocoro/1001/set/power" {
		t.Errorf("Set() = %v, want cocoro/1001/set/power", got)
	}
	if got := topics.AllSets(); got != "cocoro/+/set/+" {
		t.Errorf("AllSets() = %v, want cocoro/+/set/+", got)
	}
	if got := topics.Status(); got != "cocoro/bridge/status" {
		t.Errorf("Status() = %v, want cocoro/bridge/status", got)
	}
}

func TestTopicsParseSet(t *testing.T) {
	topics := Topics{Prefix: "home/cocoro"}

	tests := []struct {
		name     string
		topic    string
		wantID   int64
		wantAttr string
		wantErr  bool
	}{
		{"power", "home/cocoro/1001/set/power", 1001, "power", false},
		{"temperature", "home/cocoro/7/set/temperature", 7, "temperature", false},
		{"other prefix", "cocoro/1001/set/power", 0, "", true},
		{"state topic", "home/cocoro/1001/state", 0, "", true},
		{"non-numeric id", "home/cocoro/abc/set/power", 0, "", true},
		{"missing attr", "home/cocoro/1001/set/", 0, "", true},
		{"too deep", "home/cocoro/1001/set/power/extra", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, attr, err := topics.ParseSet(tt.topic)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSet(%q) error = %v, wantErr %v", tt.topic, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidTopic) {
					t.Errorf("ParseSet(%q) error = %v, want ErrInvalidTopic", tt.topic, err)
				}
				return
			}
			if id != tt.wantID || attr != tt.wantAttr {
				t.Errorf("ParseSet(%q) = %d, %q, want %d, %q", tt.topic, id, attr, tt.wantID, tt.wantAttr)
			}
		})
	}
}
