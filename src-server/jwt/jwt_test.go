package jwt_test

import (
	"strings"
	"testing"
	"time"

	"banquet/src-server/jwt"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := jwt.Payload{
		GuestID:   "guest-1",
		GuestCode: "ANAGARC-8H2K",
		IssuedAt:  time.Now().UTC().Unix(),
	}

	token, err := jwt.Encode(payload, "secret")
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := jwt.Decode(token, "secret")
	if err != nil {
		t.Fatal(err)
	}
	if *decoded != payload {
		t.Errorf("got %+v, want %+v", decoded, payload)
	}
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	token, err := jwt.Encode(jwt.Payload{GuestID: "guest-1"}, "secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jwt.Decode(token, "other"); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}

func TestDecodeRejectsTamperedPayload(t *testing.T) {
	token, err := jwt.Encode(jwt.Payload{GuestID: "guest-1"}, "secret")
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(token, ".")
	forged, err := jwt.Encode(jwt.Payload{GuestID: "guest-2"}, "secret")
	if err != nil {
		t.Fatal(err)
	}
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	if _, err := jwt.Decode(tampered, "secret"); err == nil {
		t.Error("tampered payload should be rejected")
	}

	if _, err := jwt.Decode("not-a-token", "secret"); err == nil {
		t.Error("malformed token should be rejected")
	}
}
