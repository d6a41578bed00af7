package clasptest

import (
	"context"
	"reflect"
	"testing"

	"github.com/clasp-io/clasp"
)

func TestAuthConditions(t *testing.T) {
	conds := []clasp.Condition{
		NewCondition(),
		NewCondition(),
		NewCondition(),
	}

	cases := map[string]struct {
		auth Auth
		want []clasp.Condition
	}{
		"no signers": {
			auth: Auth{},
			want: nil,
		},
		"a single signer": {
			auth: Auth{Signer: conds[0]},
			want: conds[:1],
		},
		"a list of signers": {
			auth: Auth{Signers: conds},
			want: conds,
		},
		"signers list comes before the single signer": {
			auth: Auth{Signer: conds[2], Signers: conds[:2]},
			want: conds,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.auth.GetConditions(nil); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %v conditions, got %v", tc.want, got)
			}
			for i, c := range tc.want {
				if !tc.auth.HasAddress(nil, c.Address()) {
					t.Errorf("condition %d (%s) address should be present", i, c)
				}
			}
			if tc.auth.HasAddress(nil, NewCondition().Address()) {
				t.Fatal("an unrelated condition must not be present")
			}
		})
	}
}

func TestCtxAuth(t *testing.T) {
	conds := []clasp.Condition{
		NewCondition(),
		NewCondition(),
	}

	a := CtxAuth{Key: "auth"}
	ctx := a.SetConditions(context.Background(), conds...)

	if got := a.GetConditions(ctx); !reflect.DeepEqual(got, conds) {
		t.Fatalf("want %v conditions, got %v", conds, got)
	}
	for i, c := range conds {
		if !a.HasAddress(ctx, c.Address()) {
			t.Errorf("condition %d (%s) address should be present", i, c)
		}
	}
	if a.HasAddress(ctx, NewCondition().Address()) {
		t.Fatal("an unrelated condition must not be present")
	}
}

func TestCtxAuthEmptyContext(t *testing.T) {
	a := CtxAuth{Key: "auth"}
	ctx := context.Background()

	if got := a.GetConditions(ctx); got != nil {
		t.Fatalf("want no conditions, got %+v", got)
	}
	if a.HasAddress(ctx, NewCondition().Address()) {
		t.Fatal("an unrelated condition must not be present")
	}
}
