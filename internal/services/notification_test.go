package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pingpal/pingpal-server/internal/logging"
	"github.com/pingpal/pingpal-server/internal/models"
)

type fakeSender struct {
	sendErr error
	calls   int
	token   string
	title   string
	body    string
	data    map[string]string
}

func (f *fakeSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	f.calls++
	f.token = token
	f.title = title
	f.body = body
	f.data = data
	return f.sendErr
}

func testLogger() *logging.Logger {
	return logging.New().SetOutput(io.Discard)
}

func TestNotificationService_Send_RecipientMissing(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return fakeRow{scanFunc: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}
	svc := NewNotificationService(db, &fakeSender{}, testLogger())
	if _, err := svc.Send(context.Background(), "uid-1", "alice", "missing", "Yo!"); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
}

func TestNotificationService_Send_MutedIsSilent(t *testing.T) {
	sender := &fakeSender{}
	var inserted bool
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "push_token") {
				return rowFromValues("tok")
			}
			return rowFromValues(true)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			inserted = true
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}

	svc := NewNotificationService(db, sender, testLogger())
	status, err := svc.Send(context.Background(), "uid-1", "alice", "uid-2", "Yo!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != SendStatusMuted {
		t.Fatalf("expected muted status, got %q", status)
	}
	if sender.calls != 0 {
		t.Fatal("muted send must not push")
	}
	if inserted {
		t.Fatal("muted send must not record a notification")
	}
}

func TestNotificationService_Send_AppliesDefaults(t *testing.T) {
	sender := &fakeSender{}
	var insertArgs []any
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "push_token") {
				return rowFromValues("tok")
			}
			return rowFromValues(false)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			insertArgs = args
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}

	svc := NewNotificationService(db, sender, testLogger())
	status, err := svc.Send(context.Background(), "uid-1", "  ", "uid-2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != SendStatusSent {
		t.Fatalf("expected sent status, got %q", status)
	}
	if insertArgs[2] != "Someone" || insertArgs[3] != "Yo!" {
		t.Fatalf("expected default sender name and message, got %v", insertArgs)
	}
	if sender.title != "Someone" || sender.body != "Yo!" {
		t.Fatalf("push used wrong defaults: %q %q", sender.title, sender.body)
	}
}

func TestNotificationService_Send_PushFailureSwallowed(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("gateway down")}
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "push_token") {
				return rowFromValues("tok")
			}
			return rowFromValues(false)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}

	svc := NewNotificationService(db, sender, testLogger())
	status, err := svc.Send(context.Background(), "uid-1", "alice", "uid-2", "Yo!")
	if err != nil {
		t.Fatalf("push failure must not fail the send: %v", err)
	}
	if status != SendStatusSent {
		t.Fatalf("expected sent status, got %q", status)
	}
	if sender.calls != 1 {
		t.Fatal("expected a push attempt")
	}
}

func TestNotificationService_Send_NoPushTokenStillRecords(t *testing.T) {
	sender := &fakeSender{}
	var inserted bool
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			if strings.Contains(sql, "push_token") {
				return rowFromValues(nil)
			}
			return rowFromValues(false)
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			inserted = true
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}

	svc := NewNotificationService(db, sender, testLogger())
	status, err := svc.Send(context.Background(), "uid-1", "alice", "uid-2", "Yo!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != SendStatusSent {
		t.Fatalf("expected sent status, got %q", status)
	}
	if !inserted {
		t.Fatal("expected in-app record even without a device token")
	}
	if sender.calls != 0 {
		t.Fatal("no token means no push attempt")
	}
}

func TestNotificationService_TriggerExternal_OwnerMissing(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return fakeRow{scanFunc: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}
	svc := NewNotificationService(db, &fakeSender{}, testLogger())
	key := &models.APIKey{OwnerUID: "gone", ContactName: "monitoring"}
	if err := svc.TriggerExternal(context.Background(), key, "deploy done"); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
}

func TestNotificationService_TriggerExternal_PushOnly(t *testing.T) {
	sender := &fakeSender{}
	var execCalled bool
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues("tok")
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			execCalled = true
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}

	svc := NewNotificationService(db, sender, testLogger())
	key := &models.APIKey{OwnerUID: "uid-1", ContactName: "monitoring"}
	if err := svc.TriggerExternal(context.Background(), key, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if execCalled {
		t.Fatal("external trigger must not write an in-app record")
	}
	if sender.calls != 1 || sender.title != "monitoring" || sender.body != "Yo!" {
		t.Fatalf("unexpected push: %+v", sender)
	}
}

func TestNotificationService_List_ClampsLimit(t *testing.T) {
	var gotLimit int
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			gotLimit = args[1].(int)
			return &fakeRows{}, nil
		},
	}
	svc := NewNotificationService(db, &fakeSender{}, testLogger())

	if _, err := svc.List(context.Background(), "uid-1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 50 {
		t.Fatalf("expected default limit 50, got %d", gotLimit)
	}

	if _, err := svc.List(context.Background(), "uid-1", 9999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 200 {
		t.Fatalf("expected clamped limit 200, got %d", gotLimit)
	}
}

func TestNotificationService_List_ScansRows(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()
	db := &fakeDB{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			return &fakeRows{rows: [][]any{
				{id, "uid-2", "uid-1", "alice", "Yo!", false, now},
			}}, nil
		},
	}
	svc := NewNotificationService(db, &fakeSender{}, testLogger())
	list, err := svc.List(context.Background(), "uid-2", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != id || list[0].SenderName != "alice" {
		t.Fatalf("unexpected notifications: %+v", list)
	}
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			return fakeCommandTag{rowsAffected: 0}, nil
		},
	}
	svc := NewNotificationService(db, &fakeSender{}, testLogger())
	if err := svc.MarkRead(context.Background(), "uid-2", uuid.New()); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationService_MarkRead_ScopesToRecipient(t *testing.T) {
	var gotArgs []any
	db := &fakeDB{
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if !strings.Contains(sql, "recipient_uid") {
				t.Fatalf("update must scope to recipient: %q", sql)
			}
			gotArgs = args
			return fakeCommandTag{rowsAffected: 1}, nil
		},
	}
	svc := NewNotificationService(db, &fakeSender{}, testLogger())
	id := uuid.New()
	if err := svc.MarkRead(context.Background(), "uid-2", id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotArgs[1] != "uid-2" {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
}

func TestNotificationService_UnreadCount(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			return rowFromValues(3)
		},
	}
	svc := NewNotificationService(db, &fakeSender{}, testLogger())
	count, err := svc.UnreadCount(context.Background(), "uid-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}
}
