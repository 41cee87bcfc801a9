package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/locks"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

type testClients struct {
	users  apiconnect.UserServiceClient
	groups apiconnect.GroupServiceClient
	ledger apiconnect.LedgerServiceClient
}

// setupTestServer serves all three services over HTTP backed by a fresh SQLite file.
func setupTestServer(t *testing.T) testClients {
	t.Helper()

	store, err := sqlstore.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	orchestrator := settlement.New(store, locks.NewLocal())

	userPath, userHandler := apiconnect.NewUserServiceHandler(NewUserService(store))
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(NewGroupService(store))
	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(NewLedgerService(store, orchestrator))

	mux := http.NewServeMux()
	mux.Handle(userPath, userHandler)
	mux.Handle(groupPath, groupHandler)
	mux.Handle(ledgerPath, ledgerHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return testClients{
		users:  apiconnect.NewUserServiceClient(http.DefaultClient, server.URL),
		groups: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
	}
}

func createUser(t *testing.T, c testClients, name string) string {
	t.Helper()
	resp, err := c.users.CreateUser(context.Background(), connect.NewRequest(&api.CreateUserRequest{Name: name}))
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return resp.Msg.User.ID
}

func createGroup(t *testing.T, c testClients, viewer string, members ...string) string {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Title:    "Flatmates",
		ViewerID: viewer,
		Members:  members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group.ID
}

func addExpense(t *testing.T, c testClients, groupID, payer, amount string) {
	t.Helper()
	_, err := c.ledger.CreateTransaction(context.Background(), connect.NewRequest(&api.CreateTransactionRequest{
		GroupID: groupID,
		PayerID: payer,
		Title:   "Groceries",
		Amount:  amount,
	}))
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
}

// expectCode fails unless err is a *connect.Error with the given status and reason.
func expectCode(t *testing.T, err error, code connect.Code, reason string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T", err)
	}
	if connectErr.Code() != code {
		t.Errorf("expected %v, got %v (%s)", code, connectErr.Code(), connectErr.Message())
	}
	if reason == "" {
		return
	}
	if got := connectErr.Meta().Get(ErrorCodeHeader); got != reason {
		t.Errorf("%s: expected %q, got %q", ErrorCodeHeader, reason, got)
	}
	if !strings.Contains(connectErr.Message(), reason) {
		t.Errorf("expected message to contain %q, got %q", reason, connectErr.Message())
	}
}
