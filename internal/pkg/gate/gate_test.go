package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sentra-auth/internal/pkg/session"
)

func userSession(mutate func(*session.UserState)) *session.State {
	u := &session.UserState{
		ClientID: "c1",
		Role:     "user",
		Provider: session.ProviderInfo{ID: "p1", Kind: session.ProviderLocal, Completed: true},
		TFA:      session.TFAStatus{Enabled: false, Authenticated: false},
	}
	if mutate != nil {
		mutate(u)
	}
	return &session.State{User: u}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		state  *session.State
		policy Policy
		want   Decision
	}{
		{
			name:  "nil session",
			state: nil,
			want:  Unauthenticated,
		},
		{
			name:  "session without user",
			state: &session.State{},
			want:  Unauthenticated,
		},
		{
			name:  "plain authenticated user",
			state: userSession(nil),
			want:  Allow,
		},
		{
			name: "2fa enabled but not yet satisfied",
			state: userSession(func(u *session.UserState) {
				u.TFA = session.TFAStatus{Enabled: true, Authenticated: false}
			}),
			want: SecondFactorRequired,
		},
		{
			name: "2fa satisfied",
			state: userSession(func(u *session.UserState) {
				u.TFA = session.TFAStatus{Enabled: true, Authenticated: true}
			}),
			want: Allow,
		},
		{
			name:   "role not allowed",
			state:  userSession(nil),
			policy: Policy{AllowedRoles: []string{"admin", "dev"}},
			want:   Forbidden,
		},
		{
			name: "role allowed",
			state: userSession(func(u *session.UserState) {
				u.Role = "admin"
			}),
			policy: Policy{AllowedRoles: []string{"admin", "dev"}},
			want:   Allow,
		},
		{
			name: "incomplete setup on guarded route",
			state: userSession(func(u *session.UserState) {
				u.Provider.Completed = false
			}),
			policy: Policy{RequireCompleted: true},
			want:   SetupIncomplete,
		},
		{
			name: "incomplete setup allowed on the completion route",
			state: userSession(func(u *session.UserState) {
				u.Provider.Completed = false
			}),
			policy: Policy{RequireCompleted: false},
			want:   Allow,
		},
		{
			name: "pending 2fa admitted on the validation route",
			state: userSession(func(u *session.UserState) {
				u.TFA = session.TFAStatus{Enabled: true, Authenticated: false}
			}),
			policy: Policy{SkipSecondFactor: true},
			want:   Allow,
		},
		{
			name: "2fa gate outranks role check",
			state: userSession(func(u *session.UserState) {
				u.TFA = session.TFAStatus{Enabled: true, Authenticated: false}
				u.Role = "guest"
			}),
			policy: Policy{AllowedRoles: []string{"admin"}},
			want:   SecondFactorRequired,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.state, tc.policy))
		})
	}
}

func TestEvaluateDoesNotMutateState(t *testing.T) {
	state := userSession(func(u *session.UserState) {
		u.TFA = session.TFAStatus{Enabled: true, Authenticated: false}
	})
	before := *state.User

	Evaluate(state, Policy{AllowedRoles: []string{"admin"}, RequireCompleted: true})
	assert.Equal(t, before, *state.User)
}
