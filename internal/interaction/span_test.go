package interaction

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFinalizeWithAllFields(t *testing.T) {
	span := Enter()
	span.SetRequest("https://upstream/process", map[string]any{"pan": "****1111"})
	span.SetResponseStatus(200)
	span.SetResponse(map[string]any{"status": true})

	log := span.Finalize("payment")

	if log.Gateway != "oxygate" {
		t.Errorf("gateway = %q", log.Gateway)
	}
	if log.Kind != "payment" {
		t.Errorf("kind = %q", log.Kind)
	}
	if log.Request == nil || log.Request.URL != "https://upstream/process" {
		t.Errorf("request = %+v", log.Request)
	}
	if log.Status == nil || *log.Status != 200 {
		t.Errorf("status = %v", log.Status)
	}
	if log.Response == nil {
		t.Error("response missing")
	}
	if log.Duration < 0 {
		t.Errorf("duration = %f", log.Duration)
	}
	if time.Since(log.CreatedAt) > time.Minute {
		t.Errorf("created_at = %v", log.CreatedAt)
	}
}

func TestFinalizeWithPartialData(t *testing.T) {
	// Transport failure: the request was set but nothing came back.
	span := Enter()
	span.SetRequest("https://upstream/initialize", nil)

	log := span.Finalize("init_payment")

	if log.Request == nil {
		t.Error("request should survive")
	}
	if log.Status != nil {
		t.Errorf("status should be absent, got %v", *log.Status)
	}
	if log.Response != nil {
		t.Errorf("response should be absent, got %v", log.Response)
	}

	b, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["status"] != nil {
		t.Errorf("serialized status = %v, want null", decoded["status"])
	}
}

func TestFinalizeTwicePanics(t *testing.T) {
	span := Enter()
	span.Finalize("payment")

	defer func() {
		if recover() == nil {
			t.Error("second Finalize should panic")
		}
	}()
	span.Finalize("payment")
}

func TestFieldsSettableInAnyOrder(t *testing.T) {
	span := Enter()
	span.SetResponseStatus(502)
	span.SetResponse(map[string]any{"error": "bad gateway"})
	span.SetRequest("https://upstream/status/ref", nil)

	log := span.Finalize("status")
	if log.Status == nil || *log.Status != 502 {
		t.Errorf("status = %v", log.Status)
	}
	if log.Request == nil {
		t.Error("request missing")
	}
}
