package req

import (
	"strings"
	"testing"
)

type payload struct {
	Amount int64  `json:"amount" validate:"gt=0"`
	Name   string `json:"name" validate:"omitempty,oneof=a b"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"amount":10,"name":"a"}`},
		{name: "zero amount", body: `{"amount":0}`, wantErr: true},
		{name: "bad enum", body: `{"amount":1,"name":"c"}`, wantErr: true},
		{name: "broken json", body: `{"amount":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[payload](strings.NewReader(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Amount != 10 {
				t.Fatalf("amount = %d, want 10", got.Amount)
			}
		})
	}
}
