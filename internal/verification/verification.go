// internal/verification/verification.go
package verification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/observer"
	"github.com/vibing/vibing-client/internal/utils"
)

const (
	// CodeTTL is how long a sent code stays usable.
	CodeTTL = 5 * time.Minute

	storageKey = "phone-verification"
)

var (
	ErrInvalidPhone  = errors.New("invalid phone number format, use +82XXXXXXXXX")
	ErrNoPhone       = errors.New("no phone number found")
	ErrNoPending     = errors.New("no verification data found")
	ErrCodeExpired   = errors.New("verification code has expired")
	ErrCodeMalformed = errors.New("verification code must be 6 digits")
)

type Step string

const (
	StepPhone    Step = "phone"
	StepCode     Step = "code"
	StepVerified Step = "verified"
)

// Data is the pending or completed verification.
type Data struct {
	Phone      string     `json:"phone"`
	Code       string     `json:"code,omitempty"`
	IsVerified bool       `json:"isVerified"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type State struct {
	Step    Step
	Data    *Data
	Loading bool
	Err     string
	// DevCode is the code echoed by development backends.
	DevCode string
}

type PhoneAPI interface {
	SendVerificationCode(ctx context.Context, phone string) (*models.VerificationCodeResponse, error)
	VerifyPhone(ctx context.Context, phone, code string) (string, error)
}

// Storage keeps a pending verification across process restarts.
type Storage interface {
	GetJSON(ctx context.Context, key string, out interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Flow struct {
	api     PhoneAPI
	storage Storage
	now     func() time.Time
	log     *logrus.Entry

	mu    sync.Mutex
	state State

	subject observer.Subject[State]
}

func New(api PhoneAPI, storage Storage) *Flow {
	return &Flow{
		api:     api,
		storage: storage,
		now:     time.Now,
		log:     logrus.WithField("component", "verification"),
		state:   State{Step: StepPhone},
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *Flow) snapshot() State {
	st := f.state
	if st.Data != nil {
		d := *st.Data
		st.Data = &d
	}
	return st
}

func (f *Flow) Subscribe(fn func(State)) func() {
	return f.subject.Subscribe(fn)
}

func (f *Flow) update(fn func(*State)) {
	f.mu.Lock()
	fn(&f.state)
	snap := f.snapshot()
	f.mu.Unlock()
	f.subject.Publish(snap)
}

// Restore loads a pending verification saved by an earlier run.
func (f *Flow) Restore(ctx context.Context) error {
	if f.storage == nil {
		return nil
	}
	var data Data
	ok, err := f.storage.GetJSON(ctx, storageKey, &data)
	if err != nil || !ok {
		return err
	}
	step := StepCode
	if data.IsVerified {
		step = StepVerified
	}
	f.update(func(s *State) {
		s.Data = &data
		s.Step = step
	})
	return nil
}

func (f *Flow) persist(ctx context.Context, data *Data) {
	if f.storage == nil {
		return
	}
	if err := f.storage.SetJSON(ctx, storageKey, data); err != nil {
		f.log.WithError(err).Warn("Failed to persist verification state")
	}
}

// SendCode validates phone and asks the API to text a code to it.
func (f *Flow) SendCode(ctx context.Context, phone string) error {
	f.update(func(s *State) {
		s.Loading = true
		s.Err = ""
	})

	if !utils.IsValidPhone(phone) {
		f.fail(ErrInvalidPhone)
		return ErrInvalidPhone
	}

	resp, err := f.api.SendVerificationCode(ctx, phone)
	if err != nil {
		f.fail(err)
		return err
	}

	expires := f.now().Add(CodeTTL)
	data := &Data{Phone: phone, ExpiresAt: &expires}
	f.persist(ctx, data)

	f.update(func(s *State) {
		s.Loading = false
		s.Data = data
		s.Step = StepCode
		s.DevCode = resp.Code
	})
	if resp.Code != "" {
		f.log.WithField("phone", phone).Debugf("Development mode verification code: %s", resp.Code)
	}
	return nil
}

// VerifyCode checks code against the pending phone. It returns false with
// the reason when verification fails.
func (f *Flow) VerifyCode(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	data := f.state.Data
	f.mu.Unlock()
	if data == nil {
		return false, ErrNoPending
	}

	f.update(func(s *State) {
		s.Loading = true
		s.Err = ""
	})

	if data.ExpiresAt != nil && f.now().After(*data.ExpiresAt) {
		f.fail(ErrCodeExpired)
		return false, ErrCodeExpired
	}
	if err := utils.ValidateVar("code", code, "required,len=6,numeric"); err != nil {
		f.fail(ErrCodeMalformed)
		return false, ErrCodeMalformed
	}

	if _, err := f.api.VerifyPhone(ctx, data.Phone, code); err != nil {
		f.fail(err)
		return false, err
	}

	verified := &Data{Phone: data.Phone, Code: code, IsVerified: true, ExpiresAt: data.ExpiresAt}
	f.persist(ctx, verified)
	f.update(func(s *State) {
		s.Loading = false
		s.Data = verified
		s.Step = StepVerified
	})
	return true, nil
}

// Resend sends a new code to the phone entered earlier.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	data := f.state.Data
	f.mu.Unlock()
	if data == nil || data.Phone == "" {
		return ErrNoPhone
	}
	return f.SendCode(ctx, data.Phone)
}

// SetInitialPhone jumps straight to the code step for phone.
func (f *Flow) SetInitialPhone(phone string) {
	f.update(func(s *State) {
		s.Data = &Data{Phone: phone}
		s.Step = StepCode
	})
}

// Reset returns to the phone step and forgets any pending verification.
func (f *Flow) Reset(ctx context.Context) {
	if f.storage != nil {
		if err := f.storage.Delete(ctx, storageKey); err != nil {
			f.log.WithError(err).Warn("Failed to clear verification state")
		}
	}
	f.update(func(s *State) {
		*s = State{Step: StepPhone}
	})
}

// VerifiedPhone returns the phone number once verification succeeded.
func (f *Flow) VerifiedPhone() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Step != StepVerified || f.state.Data == nil {
		return "", false
	}
	return f.state.Data.Phone, true
}

func (f *Flow) fail(err error) {
	f.update(func(s *State) {
		s.Loading = false
		s.Err = err.Error()
	})
}
