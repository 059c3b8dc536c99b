package provider

import (
	"context"
	"testing"
)

func TestMockLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := NewMock(
		Record{Type: "A", Name: "rm.example.com", Value: "192.0.2.10"},
	)

	records, err := mock.Records(ctx, "RM.example.com.")
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 || records[0].ID != "mock-1" {
		t.Fatalf("Records = %+v, want one record with ID mock-1", records)
	}
	if got := mock.RecordsCalls["rm.example.com"]; got != 1 {
		t.Errorf("RecordsCalls = %d, want 1", got)
	}

	created, err := mock.CreateRecord(ctx, Record{Type: "CNAME", Name: "rm.example.com", Value: "to.rulemailer.se"})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if created.ID == "" {
		t.Error("CreateRecord assigned no ID")
	}

	if err := mock.DeleteRecord(ctx, "mock-1"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := mock.DeleteRecord(ctx, "mock-1"); err == nil {
		t.Error("deleting a missing ID returned nil error")
	}

	if got := mock.Find("rm.example.com", "cname"); len(got) != 1 || got[0].ID != created.ID {
		t.Errorf("Find = %+v, want the created CNAME", got)
	}
	if got := mock.Find("rm.example.com", "A"); len(got) != 0 {
		t.Errorf("Find(A) = %+v, want none", got)
	}
}

func TestUpdatableMockUpdate(t *testing.T) {
	ctx := context.Background()
	mock := UpdatableMock{Mock: NewMock(
		Record{ID: "cf-1", Type: "CNAME", Name: "rm.example.com", Value: "to.rulemailer.se", Proxied: true},
	)}

	proxied := false
	updated, err := mock.UpdateRecord(ctx, "cf-1", Update{Proxied: &proxied})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if updated.Proxied {
		t.Error("updated record still proxied")
	}

	stored := mock.Find("rm.example.com", "CNAME")
	if len(stored) != 1 || stored[0].Proxied {
		t.Errorf("stored record = %+v, want Proxied false", stored)
	}

	if _, err := mock.UpdateRecord(ctx, "nope", Update{Proxied: &proxied}); err == nil {
		t.Error("updating a missing ID returned nil error")
	}
}
