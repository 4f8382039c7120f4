package model

import (
	"encoding/json"
	"testing"
)

func TestSwapEventDataJSONStringFields(t *testing.T) {
	payload := SwapEventData{
		Sender:     "0x1111111111111111111111111111111111111111",
		To:         "0x2222222222222222222222222222222222222222",
		Amount0In:  "1.5",
		Amount1In:  "0",
		Amount0Out: "0",
		Amount1Out: "2999.123456789012345678",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"amount0_in", "amount1_in", "amount0_out", "amount1_out"} {
		if _, ok := decoded[key].(string); !ok {
			t.Fatalf("%s should be string", key)
		}
	}
}

func TestTokenPriceDecimalsEncodeAsStrings(t *testing.T) {
	data, err := json.Marshal(TokenPrice{Token: "0xa", Status: "anchored"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["derived_native"] != "0" {
		t.Fatalf("derived_native should encode as \"0\", got %v", decoded["derived_native"])
	}
	if _, ok := decoded["anchor"]; ok {
		t.Fatalf("empty anchor should be omitted")
	}
}
