package game

import (
	"context"
	"math/rand"
	"strings"

	"skytycoon/internal/apperr"
	"skytycoon/internal/events"
	"skytycoon/internal/models"
)

// AircraftSpec describes an aircraft to buy. Zero values are filled from the
// catalog entry named by Model.
type AircraftSpec struct {
	Model             string
	Registration      string
	Capacity          int
	Range             int
	CruisingSpeed     int
	FuelEfficiency    float64
	PurchasePrice     *models.Money
	HasWifi           bool
	HasEntertainment  bool
	HasPremiumSeating bool
}

// resolve fills the spec from the catalog and reports missing fields.
func (e *Engine) resolve(spec AircraftSpec) (AircraftSpec, error) {
	spec.Model = strings.TrimSpace(spec.Model)
	if m, ok := e.model(spec.Model); ok {
		if spec.Capacity == 0 {
			spec.Capacity = m.Capacity
		}
		if spec.Range == 0 {
			spec.Range = m.Range
		}
		if spec.CruisingSpeed == 0 {
			spec.CruisingSpeed = m.CruisingSpeed
		}
		if spec.FuelEfficiency == 0 {
			spec.FuelEfficiency = m.FuelEfficiency
		}
		if spec.PurchasePrice == nil {
			price := m.Price
			spec.PurchasePrice = &price
		}
	}

	var issues []apperr.Issue
	missing := func(field string) {
		issues = append(issues, apperr.Issue{Field: field, Message: "is required for models outside the catalog"})
	}
	if spec.Model == "" {
		issues = append(issues, apperr.Issue{Field: "model", Message: "is required"})
	}
	if spec.Capacity <= 0 {
		missing("capacity")
	}
	if spec.Range <= 0 {
		missing("range")
	}
	if spec.CruisingSpeed <= 0 {
		missing("cruisingSpeed")
	}
	if spec.FuelEfficiency <= 0 {
		missing("fuelEfficiency")
	}
	if spec.PurchasePrice == nil {
		missing("purchasePrice")
	} else if spec.PurchasePrice.IsNegative() {
		issues = append(issues, apperr.Issue{Field: "purchasePrice", Message: "must not be negative"})
	} else if !spec.PurchasePrice.WholeCents() {
		issues = append(issues, apperr.Issue{Field: "purchasePrice", Message: "must have at most 2 decimal places"})
	}
	if len(issues) > 0 {
		return spec, apperr.Invalid("invalid aircraft", issues)
	}
	return spec, nil
}

// PurchaseAircraft buys an aircraft for the player. Nothing changes when the
// player cannot afford it.
func (e *Engine) PurchaseAircraft(ctx context.Context, playerID int64, spec AircraftSpec) (models.Aircraft, error) {
	spec, err := e.resolve(spec)
	if err != nil {
		return models.Aircraft{}, err
	}

	defer e.locks.lock(playerID)()
	p, err := e.GetPlayer(ctx, playerID)
	if err != nil {
		return models.Aircraft{}, err
	}
	price := *spec.PurchasePrice
	if p.Money.LessThan(price.Decimal) {
		return models.Aircraft{}, apperr.InsufficientFundsf("insufficient funds: %s costs %s, balance is %s", spec.Model, price, p.Money)
	}

	registration := strings.ToUpper(strings.TrimSpace(spec.Registration))
	if registration == "" {
		e.withRand(func(r *rand.Rand) { registration = Registration(r, p.Hub) })
	}
	ac, err := e.store.CreateAircraft(ctx, models.Aircraft{
		PlayerID:          p.ID,
		Model:             spec.Model,
		Registration:      registration,
		Capacity:          spec.Capacity,
		Range:             spec.Range,
		CruisingSpeed:     spec.CruisingSpeed,
		FuelEfficiency:    spec.FuelEfficiency,
		Status:            models.AircraftActive,
		PurchasePrice:     price,
		PurchaseDate:      p.CurrentDate,
		MaintenanceDue:    p.CurrentDate.AddDays(MaintenanceIntervalDays),
		HasWifi:           spec.HasWifi,
		HasEntertainment:  spec.HasEntertainment,
		HasPremiumSeating: spec.HasPremiumSeating,
	})
	if err != nil {
		return models.Aircraft{}, storeErr(err, "aircraft", registration)
	}

	p.Money = p.Money.Minus(price)
	if _, err := e.store.UpdatePlayer(ctx, p); err != nil {
		return models.Aircraft{}, storeErr(err, "player", p.ID)
	}
	if _, err := e.store.CreateTransaction(ctx, models.Transaction{
		PlayerID:    p.ID,
		Amount:      models.NewMoney(price.Neg()),
		Type:        models.TransactionPurchase,
		Description: "Purchased " + ac.Model + " (" + ac.Registration + ")",
		Date:        p.CurrentDate,
	}); err != nil {
		return models.Aircraft{}, storeErr(err, "transaction", p.ID)
	}
	e.record(ctx, p, events.AircraftPurchased, "Purchased %s (%s) for %s", ac.Model, ac.Registration, price)
	return ac, nil
}

func (e *Engine) ListAircraft(ctx context.Context, playerID int64) ([]models.Aircraft, error) {
	if _, err := e.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	list, err := e.store.ListAircraftByPlayer(ctx, playerID)
	if err != nil {
		return nil, storeErr(err, "aircraft", playerID)
	}
	return list, nil
}

func (e *Engine) GetAircraft(ctx context.Context, id int64) (models.Aircraft, error) {
	ac, err := e.store.GetAircraft(ctx, id)
	if err != nil {
		return models.Aircraft{}, storeErr(err, "aircraft", id)
	}
	return ac, nil
}

type AircraftUpdate struct {
	Status            *models.AircraftStatus
	HasWifi           *bool
	HasEntertainment  *bool
	HasPremiumSeating *bool
}

func (e *Engine) UpdateAircraft(ctx context.Context, id int64, upd AircraftUpdate) (models.Aircraft, error) {
	ac, err := e.GetAircraft(ctx, id)
	if err != nil {
		return models.Aircraft{}, err
	}
	defer e.locks.lock(ac.PlayerID)()
	if ac, err = e.GetAircraft(ctx, id); err != nil {
		return models.Aircraft{}, err
	}

	if upd.Status != nil {
		switch *upd.Status {
		case models.AircraftActive, models.AircraftMaintenance, models.AircraftEnRoute:
			ac.Status = *upd.Status
		default:
			return models.Aircraft{}, apperr.Invalid("invalid aircraft update", []apperr.Issue{{Field: "status", Message: "must be one of active, maintenance, en-route"}})
		}
	}
	if upd.HasWifi != nil {
		ac.HasWifi = *upd.HasWifi
	}
	if upd.HasEntertainment != nil {
		ac.HasEntertainment = *upd.HasEntertainment
	}
	if upd.HasPremiumSeating != nil {
		ac.HasPremiumSeating = *upd.HasPremiumSeating
	}
	if ac, err = e.store.UpdateAircraft(ctx, ac); err != nil {
		return models.Aircraft{}, storeErr(err, "aircraft", id)
	}
	return ac, nil
}
