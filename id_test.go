package idgen

import (
	"encoding/json"
	"testing"
)

func TestIDEncodingRoundTrips(t *testing.T) {
	id := ID(391_531_655_594_249)

	if parsed, err := ParseID(id.String()); err != nil || parsed != id {
		t.Fatalf("ParseID(String()) = %v, %v; want %v, nil", parsed, err, id)
	}
	if parsed, err := ParseHex(id.Hex()); err != nil || parsed != id {
		t.Fatalf("ParseHex(Hex()) = %v, %v; want %v, nil", parsed, err, id)
	}
	if parsed, err := ParseBase58(id.Base58()); err != nil || parsed != id {
		t.Fatalf("ParseBase58(Base58()) = %v, %v; want %v, nil", parsed, err, id)
	}
	if parsed, err := ParseBase62(id.Base62()); err != nil || parsed != id {
		t.Fatalf("ParseBase62(Base62()) = %v, %v; want %v, nil", parsed, err, id)
	}
}

func TestIDZeroEncodesConsistently(t *testing.T) {
	var id ID
	if id.String() != "0" || id.Hex() != "0" {
		t.Fatalf("zero ID should encode as \"0\" in decimal and hex, got %q %q", id.String(), id.Hex())
	}
}

func TestIDJSONRoundTripsAsString(t *testing.T) {
	id := ID(123456789012345)
	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"123456789012345"` {
		t.Fatalf("Marshal(%d) = %s, want a JSON string", id, data)
	}

	var got ID
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != id {
		t.Fatalf("Unmarshal(Marshal(%d)) = %d", id, got)
	}
}

func TestIDJSONUnmarshalsBareNumber(t *testing.T) {
	var got ID
	if err := json.Unmarshal([]byte("42"), &got); err != nil {
		t.Fatalf("Unmarshal bare number: %v", err)
	}
	if got != 42 {
		t.Fatalf("Unmarshal(42) = %d, want 42", got)
	}
}

func TestIDSQLValueAndScanRoundTrip(t *testing.T) {
	id := ID(987654321)
	v, err := id.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned ID
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("Scan(int64): %v", err)
	}
	if scanned != id {
		t.Fatalf("Scan(Value()) = %d, want %d", scanned, id)
	}

	var scannedFromString ID
	if err := scannedFromString.Scan(id.String()); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	if scannedFromString != id {
		t.Fatalf("Scan(string) = %d, want %d", scannedFromString, id)
	}
}

func TestIDComponentsDecodesFields(t *testing.T) {
	l := seedLayout(t)
	params := Params{Timestamp: 1_458_569, Counter: 1, Instance: 5, Domain: 9}
	word, err := l.Encode(params)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	domain, counter, instance, at := ID(word).Components(l)
	if domain != params.Domain || counter != params.Counter || instance != params.Instance {
		t.Fatalf("Components() = domain=%d counter=%d instance=%d, want %+v", domain, counter, instance, params)
	}
	wantUnix := int64(l.EpochStartSecond() + params.Timestamp)
	if at.Unix() != wantUnix {
		t.Fatalf("Components() time = %v (unix %d), want unix %d", at, at.Unix(), wantUnix)
	}
}

func TestParseRejectsInvalidCharacters(t *testing.T) {
	if _, err := ParseBase58("0OIl"); err == nil {
		t.Fatal("ParseBase58 should reject characters excluded from its alphabet")
	}
	if _, err := ParseHex("zz"); err == nil {
		t.Fatal("ParseHex should reject non-hex characters")
	}
}
