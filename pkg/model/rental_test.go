package model

import "testing"

func TestParseRentalStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   RentalStatus
		wantOK bool
	}{
		{input: "pending", want: StatusPending, wantOK: true},
		{input: "approved", want: StatusApproved, wantOK: true},
		{input: "declined", want: StatusDeclined, wantOK: true},
		{input: "revoked", want: StatusRevoked, wantOK: true},
		{input: "returned", want: StatusReturned, wantOK: true},
		{input: "", wantOK: false},
		{input: "Approved", wantOK: false},
		{input: "2", wantOK: false},
		{input: "cancelled", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRentalStatus(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseRentalStatus(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseRentalStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAllRentalStatuses_ReturnsCopy(t *testing.T) {
	statuses := AllRentalStatuses()
	if len(statuses) != 5 {
		t.Fatalf("expected 5 statuses, got %d", len(statuses))
	}
	statuses[0] = "broken"
	if AllRentalStatuses()[0] != StatusPending {
		t.Error("mutating the returned slice must not change the package statuses")
	}
}

func TestRental_QuantityOf(t *testing.T) {
	r := &Rental{Items: []ItemRental{
		{ItemID: "a", Quantity: 2},
		{ItemID: "b", Quantity: 5},
		{ItemID: "a", Quantity: 1},
	}}

	if got := r.QuantityOf("a"); got != 3 {
		t.Errorf("QuantityOf(a) = %d, want 3", got)
	}
	if got := r.QuantityOf("missing"); got != 0 {
		t.Errorf("QuantityOf(missing) = %d, want 0", got)
	}
}

func TestDepot_ManagedBy(t *testing.T) {
	d := &Depot{ManagerIDs: []string{"alice", "bob"}}

	if !d.ManagedBy("alice") {
		t.Error("alice should manage the depot")
	}
	if d.ManagedBy("carol") {
		t.Error("carol should not manage the depot")
	}
	if d.ManagedBy("") {
		t.Error("anonymous users never manage a depot")
	}
}
