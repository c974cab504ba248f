package notifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdg-garage/potluck-signup/internal/models"
)

type Notifier interface {
	NotifyRegistration(potluck models.Potluck, category models.Category, registration models.Registration) error
}

// Multi sends every notification to all of its notifiers.
type Multi []Notifier

func (m Multi) NotifyRegistration(potluck models.Potluck, category models.Category, registration models.Registration) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyRegistration(potluck, category, registration); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func registrationMessage(potluck models.Potluck, category models.Category, registration models.Registration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🍲 **New sign-up for %s**\n", potluck.TitleEN)
	fmt.Fprintf(&b, "**Who:** %s\n", registration.Name)

	place := category.TitleEN
	if registration.SlotNumber != nil {
		place = fmt.Sprintf("%s #%d", category.TitleEN, *registration.SlotNumber)
	}
	fmt.Fprintf(&b, "**Category:** %s\n", place)
	fmt.Fprintf(&b, "**Bringing:** %s", registration.Description)

	if registration.GifURL != nil && *registration.GifURL != "" {
		fmt.Fprintf(&b, "\n%s", *registration.GifURL)
	}
	return b.String()
}
