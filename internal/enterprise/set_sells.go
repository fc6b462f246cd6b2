package enterprise

import (
	"fmt"
	"time"

	"github.com/freshroots/admin-service/internal/models"
)

// Destinations the boundary layer redirects to after a set_sells attempt
const (
	DestinationAdmin        = "/admin"
	DestinationUnauthorized = "/unauthorized"
)

// Notice kinds attached to an outcome
const (
	NoticeSuccess = "success"
	NoticeInfo    = "notice"
	NoticeError   = "error"
)

// SellsChange is the field set a successful set_sells applies atomically
type SellsChange struct {
	Sells               models.Sells
	ProducerProfileOnly bool
	ShopTrialStartDate  *time.Time
}

// Outcome models the redirect-plus-flash result of a sells transition.
// Apply is nil when the transition was rejected and no fields change.
type Outcome struct {
	Destination string
	NoticeKind  string
	Message     string
	Apply       *SellsChange
}

// Applied reports whether the transition changes any fields
func (o Outcome) Applied() bool {
	return o.Apply != nil
}

// SetSells runs the sells state machine for an enterprise. Callers below
// manager level are turned away before any transition is considered.
// Trial bookkeeping only happens on the 'own' target: the start date is
// set once and never reset, and after the 30 day window has elapsed the
// target is permanently rejected.
func SetSells(principal models.Principal, e models.Enterprise, target models.Sells, producerProfileOnly *bool, now time.Time) Outcome {
	if RelationTo(principal, e) == RelationNone {
		return Outcome{
			Destination: DestinationUnauthorized,
			NoticeKind:  NoticeError,
			Message:     "Unauthorised",
		}
	}

	switch target {
	case models.SellsNone:
		change := &SellsChange{
			Sells:              models.SellsNone,
			ShopTrialStartDate: e.ShopTrialStartDate,
		}
		if producerProfileOnly != nil {
			change.ProducerProfileOnly = *producerProfileOnly
		} else {
			change.ProducerProfileOnly = e.ProducerProfileOnly
		}
		return Outcome{
			Destination: DestinationAdmin,
			NoticeKind:  NoticeSuccess,
			Message:     registrationCompleteMessage(e),
			Apply:       change,
		}

	case models.SellsOwn:
		return setSellsOwn(e, now)

	case models.SellsAny:
		if !principal.Admin {
			return Outcome{
				Destination: DestinationAdmin,
				NoticeKind:  NoticeError,
				Message:     "Unauthorised",
			}
		}
		return Outcome{
			Destination: DestinationAdmin,
			NoticeKind:  NoticeSuccess,
			Message:     registrationCompleteMessage(e),
			Apply: &SellsChange{
				Sells:              models.SellsAny,
				ShopTrialStartDate: e.ShopTrialStartDate,
			},
		}

	default:
		return Outcome{
			Destination: DestinationAdmin,
			NoticeKind:  NoticeError,
			Message:     "Unauthorised",
		}
	}
}

// setSellsOwn applies the shop trial state machine. producer_profile_only
// is always forced false for shops.
func setSellsOwn(e models.Enterprise, now time.Time) Outcome {
	if e.ShopTrialStartDate == nil {
		start := now
		return Outcome{
			Destination: DestinationAdmin,
			NoticeKind:  NoticeSuccess,
			Message:     registrationCompleteMessage(e),
			Apply: &SellsChange{
				Sells:              models.SellsOwn,
				ShopTrialStartDate: &start,
			},
		}
	}

	expiry := *e.TrialExpiry()
	if now.Before(expiry) {
		// Returning within the running trial keeps the original start date.
		return Outcome{
			Destination: DestinationAdmin,
			NoticeKind:  NoticeInfo,
			Message:     fmt.Sprintf("Welcome back! Your trial expires on: %s", expiry.Format("2006-01-02")),
			Apply: &SellsChange{
				Sells:              models.SellsOwn,
				ShopTrialStartDate: e.ShopTrialStartDate,
			},
		}
	}

	return Outcome{
		Destination: DestinationAdmin,
		NoticeKind:  NoticeError,
		Message:     fmt.Sprintf("Sorry, but you've already had a trial. Expired on: %s", expiry.Format("2006-01-02")),
	}
}

func registrationCompleteMessage(e models.Enterprise) string {
	return fmt.Sprintf("Congratulations! Registration for %s is complete!", e.Name)
}
