// Package service implements the Connect handlers for users, groups and the
// group ledger.
package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/ledgererr"
	"github.com/mmynk/splitledger/internal/storage"
)

// ErrorCodeHeader carries the ledger reason code on error responses.
const ErrorCodeHeader = "Ledger-Error-Code"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks the `validate` tags of an api request.
func validateRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return ledgererr.Validation(ledgererr.InvalidRequest, fe.Field(), "failed %q check", fe.Tag())
	}
	return ledgererr.Validation(ledgererr.InvalidRequest, "", "%v", err)
}

// connectError maps ledger errors to Connect status codes.
func connectError(err error) error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		switch ledgererr.KindOf(err) {
		case ledgererr.KindValidation:
			code = connect.CodeInvalidArgument
		case ledgererr.KindReference:
			code = connect.CodeNotFound
		case ledgererr.KindState:
			switch ledgererr.CodeOf(err) {
			case ledgererr.LedgerChanged:
				code = connect.CodeAborted
			case ledgererr.LockBusy:
				code = connect.CodeUnavailable
			default:
				code = connect.CodeFailedPrecondition
			}
		}
	}

	cerr = connect.NewError(code, err)
	if reason := ledgererr.CodeOf(err); reason != "" {
		cerr.Meta().Set(ErrorCodeHeader, string(reason))
	}
	return cerr
}

// loadLedgerWithNames reads a group snapshot and the user directory in
// parallel and returns the snapshot with a user ID to name map.
func loadLedgerWithNames(ctx context.Context, store storage.Store, groupID string) (*storage.Ledger, map[string]string, error) {
	var (
		ledger *storage.Ledger
		names  map[string]string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ledger, err = store.LoadLedger(ctx, groupID)
		return err
	})
	g.Go(func() error {
		users, err := store.ListUsers(ctx)
		if err != nil {
			return err
		}
		names = make(map[string]string, len(users))
		for _, u := range users {
			names[u.ID] = u.Name
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ledger, names, nil
}
