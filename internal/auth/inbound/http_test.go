package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/auth/usecase"
	"github.com/nubitera/authcore/internal/pkg/goerror"
	"github.com/nubitera/authcore/internal/pkg/router"
)

type fakeUsecase struct {
	otpRequestOut *usecase.OTPRequestOutput
	otpRequestErr error

	otpVerifyIn  *usecase.OTPVerifyInput
	otpVerifyOut *usecase.OTPVerifyOutput
	otpVerifyErr error

	loginOut *usecase.LoginOutput

	refreshOut *usecase.RefreshTokenOutput
}

func (f *fakeUsecase) OTPRequest(_ context.Context, in usecase.OTPRequestInput) (*usecase.OTPRequestOutput, error) {
	return f.otpRequestOut, f.otpRequestErr
}

func (f *fakeUsecase) OTPVerify(_ context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error) {
	f.otpVerifyIn = &in
	return f.otpVerifyOut, f.otpVerifyErr
}

func (f *fakeUsecase) Login(_ context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error) {
	return f.loginOut, nil
}

func (f *fakeUsecase) RefreshToken(_ context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	return f.refreshOut, nil
}

func (f *fakeUsecase) Logout(_ context.Context, in usecase.LogoutInput) (*usecase.LogoutOutput, error) {
	return &usecase.LogoutOutput{}, nil
}

func (f *fakeUsecase) PasswordResetRequest(_ context.Context, in usecase.PasswordResetRequestInput) (*usecase.PasswordResetRequestOutput, error) {
	return &usecase.PasswordResetRequestOutput{}, nil
}

func (f *fakeUsecase) PasswordResetVerify(_ context.Context, in usecase.PasswordResetVerifyInput) (*usecase.PasswordResetVerifyOutput, error) {
	return &usecase.PasswordResetVerifyOutput{}, nil
}

func (f *fakeUsecase) PasswordResetSet(_ context.Context, in usecase.PasswordResetSetInput) (*usecase.PasswordResetSetOutput, error) {
	return &usecase.PasswordResetSetOutput{}, nil
}

func (f *fakeUsecase) IdentifierChangeRequest(_ context.Context, in usecase.IdentifierChangeRequestInput) (*usecase.IdentifierChangeRequestOutput, error) {
	return &usecase.IdentifierChangeRequestOutput{}, nil
}

func (f *fakeUsecase) IdentifierChangeVerify(_ context.Context, in usecase.IdentifierChangeVerifyInput) (*usecase.IdentifierChangeVerifyOutput, error) {
	return &usecase.IdentifierChangeVerifyOutput{}, nil
}

func (f *fakeUsecase) Profile(_ context.Context) (*usecase.ProfileOutput, error) {
	return &usecase.ProfileOutput{}, nil
}

type fakeFlows struct {
	entries map[string][]byte
	next    int
	deleted []string
}

func newFakeFlows() *fakeFlows {
	return &fakeFlows{entries: make(map[string][]byte)}
}

func (f *fakeFlows) Create(_ context.Context, payload []byte) (string, error) {
	f.next++
	id := fmt.Sprintf("flow-%d", f.next)
	f.entries[id] = payload
	return id, nil
}

func (f *fakeFlows) Get(_ context.Context, id string) ([]byte, error) {
	payload, ok := f.entries[id]
	if !ok {
		return nil, errors.New("flow state not found")
	}
	return payload, nil
}

func (f *fakeFlows) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.entries, id)
	return nil
}

func (f *fakeFlows) TTL() time.Duration {
	return 10 * time.Minute
}

func postRequest(rec *httptest.ResponseRecorder, body string, cookies ...*http.Cookie) *router.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/test", strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return router.NewRequest(rec, req)
}

func flowCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == flowCookie {
			return c
		}
	}
	t.Fatalf("expected a %s cookie, got %v", flowCookie, rec.Header().Values("Set-Cookie"))
	return nil
}

func TestFlowCookieLifecycle(t *testing.T) {
	parked := entity.NewOTPFlow(
		entity.Target{Value: "user@example.com", Channel: entity.ChannelEmail},
		entity.PurposeRegister,
	)

	t.Run("RequestParksFlowAndSetsCookie", func(t *testing.T) {
		uc := &fakeUsecase{otpRequestOut: &usecase.OTPRequestOutput{Session: parked}}
		flows := newFakeFlows()
		end := &HTTPEndpoint{uc: uc, flows: flows}

		rec := httptest.NewRecorder()
		if _, err := end.OTPRequest(postRequest(rec, `{"target":"user@example.com","purpose":"register"}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		c := flowCookieFrom(t, rec)
		if c.Value == "" || !c.HttpOnly {
			t.Fatalf("expected an opaque http-only cookie, got %+v", c)
		}
		if c.MaxAge != int((10 * time.Minute).Seconds()) {
			t.Fatalf("expected the cookie to live as long as the store entry, got %d", c.MaxAge)
		}
		if len(flows.entries) != 1 {
			t.Fatalf("expected one parked session, got %d", len(flows.entries))
		}
	})

	t.Run("VerifyReplaysParkedSession", func(t *testing.T) {
		uc := &fakeUsecase{
			otpRequestOut: &usecase.OTPRequestOutput{Session: parked},
			otpVerifyOut:  &usecase.OTPVerifyOutput{UserID: 42, AccessToken: "a", RefreshToken: "r"},
		}
		flows := newFakeFlows()
		end := &HTTPEndpoint{uc: uc, flows: flows}

		rec := httptest.NewRecorder()
		if _, err := end.OTPRequest(postRequest(rec, `{"target":"user@example.com","purpose":"register"}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		c := flowCookieFrom(t, rec)

		rec = httptest.NewRecorder()
		if _, err := end.OTPVerify(postRequest(rec, `{"code":"482913"}`, c)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if uc.otpVerifyIn == nil || uc.otpVerifyIn.Session != parked {
			t.Fatalf("expected the parked session to reach the flow, got %+v", uc.otpVerifyIn)
		}
		if len(flows.deleted) != 1 {
			t.Fatalf("expected the parked session to be dropped, got %v", flows.deleted)
		}
		if gone := flowCookieFrom(t, rec); gone.MaxAge >= 0 || gone.Value != "" {
			t.Fatalf("expected an expired cookie, got %+v", gone)
		}
	})

	t.Run("MissingCookieYieldsZeroSession", func(t *testing.T) {
		uc := &fakeUsecase{otpVerifyErr: goerror.NewBusiness("Invalid or expired OTP.", goerror.CodeInvalidInput)}
		end := &HTTPEndpoint{uc: uc, flows: newFakeFlows()}

		rec := httptest.NewRecorder()
		if _, err := end.OTPVerify(postRequest(rec, `{"code":"482913"}`)); err == nil {
			t.Fatalf("expected an error")
		}

		if uc.otpVerifyIn == nil || uc.otpVerifyIn.Session != (entity.FlowSession{}) {
			t.Fatalf("expected a zero session, got %+v", uc.otpVerifyIn)
		}
	})

	t.Run("UnknownSessionIDYieldsZeroSession", func(t *testing.T) {
		uc := &fakeUsecase{otpVerifyErr: goerror.NewBusiness("Invalid or expired OTP.", goerror.CodeInvalidInput)}
		end := &HTTPEndpoint{uc: uc, flows: newFakeFlows()}

		rec := httptest.NewRecorder()
		cookie := &http.Cookie{Name: flowCookie, Value: "stale-id"}
		if _, err := end.OTPVerify(postRequest(rec, `{"code":"482913"}`, cookie)); err == nil {
			t.Fatalf("expected an error")
		}

		if uc.otpVerifyIn == nil || uc.otpVerifyIn.Session != (entity.FlowSession{}) {
			t.Fatalf("expected a zero session, got %+v", uc.otpVerifyIn)
		}
	})

	t.Run("FailedVerifyKeepsParkedState", func(t *testing.T) {
		uc := &fakeUsecase{
			otpRequestOut: &usecase.OTPRequestOutput{Session: parked},
			otpVerifyErr:  goerror.NewBusiness("Invalid or expired OTP.", goerror.CodeInvalidInput),
		}
		flows := newFakeFlows()
		end := &HTTPEndpoint{uc: uc, flows: flows}

		rec := httptest.NewRecorder()
		if _, err := end.OTPRequest(postRequest(rec, `{"target":"user@example.com","purpose":"register"}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		c := flowCookieFrom(t, rec)

		rec = httptest.NewRecorder()
		if _, err := end.OTPVerify(postRequest(rec, `{"code":"000000"}`, c)); err == nil {
			t.Fatalf("expected an error")
		}

		if len(flows.entries) != 1 || len(flows.deleted) != 0 {
			t.Fatalf("expected the parked session to survive for a retry, got %v", flows.deleted)
		}
	})
}

func TestTokenResponseShape(t *testing.T) {
	marshal := func(t *testing.T, resp any) string {
		t.Helper()

		raw, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		return string(raw)
	}

	t.Run("VerifyCarriesUserID", func(t *testing.T) {
		uc := &fakeUsecase{
			otpRequestOut: &usecase.OTPRequestOutput{Session: entity.NewOTPFlow(
				entity.Target{Value: "user@example.com", Channel: entity.ChannelEmail},
				entity.PurposeLogin,
			)},
			otpVerifyOut: &usecase.OTPVerifyOutput{UserID: 42, AccessToken: "a", RefreshToken: "r"},
		}
		flows := newFakeFlows()
		end := &HTTPEndpoint{uc: uc, flows: flows}

		rec := httptest.NewRecorder()
		if _, err := end.OTPRequest(postRequest(rec, `{"target":"user@example.com","purpose":"login"}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		c := flowCookieFrom(t, rec)

		resp, err := end.OTPVerify(postRequest(httptest.NewRecorder(), `{"code":"482913"}`, c))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if raw := marshal(t, resp); !strings.Contains(raw, `"user_id":42`) {
			t.Fatalf("expected a numeric user_id field, got %s", raw)
		}
	})

	t.Run("LoginCarriesUserID", func(t *testing.T) {
		uc := &fakeUsecase{loginOut: &usecase.LoginOutput{UserID: 7, AccessToken: "a", RefreshToken: "r"}}
		end := &HTTPEndpoint{uc: uc, flows: newFakeFlows()}

		resp, err := end.Login(postRequest(httptest.NewRecorder(), `{"login":"user@example.com","password":"correct horse"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if raw := marshal(t, resp); !strings.Contains(raw, `"user_id":7`) {
			t.Fatalf("expected a numeric user_id field, got %s", raw)
		}
	})

	t.Run("RefreshOmitsUserID", func(t *testing.T) {
		uc := &fakeUsecase{refreshOut: &usecase.RefreshTokenOutput{AccessToken: "a", RefreshToken: "r"}}
		end := &HTTPEndpoint{uc: uc, flows: newFakeFlows()}

		resp, err := end.RefreshToken(postRequest(httptest.NewRecorder(), `{"refresh_token":"opaque"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if raw := marshal(t, resp); strings.Contains(raw, "user_id") {
			t.Fatalf("a refresh proves possession only, got %s", raw)
		}
	})
}
