package validation

import (
	"strings"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/api/request"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/washdate"
)

// ValidateCreateEntry checks the required fields and formats of a new entry.
// The broker selector offers an empty option, but an empty broker is
// rejected here: broker is effectively required.
func ValidateCreateEntry(req request.CreateEntryRequest) error {
	return validateEntryFields(req.Account, req.Tickers, req.HeldIn, req.Broker, req.SellDate)
}

// ValidateUpdateEntry applies the same rules as create; updates rewrite
// every editable field.
func ValidateUpdateEntry(req request.UpdateEntryRequest) error {
	return validateEntryFields(req.Account, req.Tickers, req.HeldIn, req.Broker, req.SellDate)
}

func validateEntryFields(account, tickers, heldIn, broker, sellDate string) error {
	errors := make(map[string]string)

	if strings.TrimSpace(account) == "" {
		errors["account"] = "account is required"
	}
	if strings.TrimSpace(tickers) == "" {
		errors["tickers"] = "tickers is required"
	}
	if strings.TrimSpace(heldIn) == "" {
		errors["heldIn"] = "heldIn is required"
	}

	if strings.TrimSpace(broker) == "" {
		errors["broker"] = "broker is required"
	} else if !model.ValidBroker(broker) {
		errors["broker"] = "broker must be one of " + strings.Join(model.Brokers, ", ")
	}

	if strings.TrimSpace(sellDate) == "" {
		errors["sellDate"] = "sellDate is required"
	} else if _, err := washdate.ParseDate(sellDate); err != nil {
		errors["sellDate"] = "sellDate must be a valid date in YYYY-MM-DD format"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
