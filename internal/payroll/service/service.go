// Package service provides business logic for payroll rule snapshots.
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"guardops_backend/internal/payroll/calc"
	"guardops_backend/internal/payroll/repository"
	"guardops_backend/internal/payroll/transport"
	"guardops_backend/platform/apperr"
	"guardops_backend/platform/logger"
)

// Service publishes and serves versioned payroll rule snapshots.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a payroll rules service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Publish validates and stores a new rule version. Published versions are
// immutable; corrections go out as a fresh version.
func (s *Service) Publish(ctx context.Context, req transport.PublishRuleSnapshotRequest) (transport.RuleSnapshotResponse, error) {
	snapshot, err := toSnapshot(req)
	if err != nil {
		return transport.RuleSnapshotResponse{}, err
	}

	stored, err := s.repo.Insert(ctx, snapshot)
	if err != nil {
		return transport.RuleSnapshotResponse{}, err
	}

	s.log.Info("payroll rule snapshot published", "version", stored.Version, "afpProviders", len(stored.AFPRatesPct))
	return toResponse(stored, false), nil
}

// Latest returns the newest published snapshot.
func (s *Service) Latest(ctx context.Context) (transport.RuleSnapshotResponse, error) {
	snapshot, err := s.repo.Latest(ctx)
	if err != nil {
		return transport.RuleSnapshotResponse{}, err
	}
	return toResponse(snapshot, false), nil
}

// LatestSnapshot returns the newest snapshot as the domain value consumed by
// the costing engine.
func (s *Service) LatestSnapshot(ctx context.Context) (calc.RuleSnapshot, error) {
	return s.repo.Latest(ctx)
}

// SnapshotByVersion returns a specific version for reproducing historical
// quotes.
func (s *Service) SnapshotByVersion(ctx context.Context, version int) (calc.RuleSnapshot, error) {
	return s.repo.ByVersion(ctx, version)
}

// ByVersion returns a specific version, marked stale when a newer one
// exists. Staleness is advisory: historical quotes legitimately pin old
// versions.
func (s *Service) ByVersion(ctx context.Context, version int) (transport.RuleSnapshotResponse, error) {
	snapshot, err := s.repo.ByVersion(ctx, version)
	if err != nil {
		return transport.RuleSnapshotResponse{}, err
	}

	latest, err := s.repo.LatestVersion(ctx)
	if err != nil {
		return transport.RuleSnapshotResponse{}, err
	}

	return toResponse(snapshot, snapshot.Version < latest), nil
}

// List returns all published versions, newest first.
func (s *Service) List(ctx context.Context) (transport.RuleSnapshotListResponse, error) {
	snapshots, err := s.repo.List(ctx)
	if err != nil {
		return transport.RuleSnapshotListResponse{}, err
	}

	items := make([]transport.RuleSnapshotResponse, len(snapshots))
	for i, snapshot := range snapshots {
		items[i] = toResponse(snapshot, i > 0)
	}
	return transport.RuleSnapshotListResponse{Items: items, Total: len(items)}, nil
}

func toSnapshot(req transport.PublishRuleSnapshotRequest) (calc.RuleSnapshot, error) {
	afpRates := make(map[string]decimal.Decimal, len(req.AFPRatesPct))
	for provider, rate := range req.AFPRatesPct {
		parsed, err := parsePct("afpRatesPct."+provider, rate)
		if err != nil {
			return calc.RuleSnapshot{}, err
		}
		afpRates[provider] = parsed
	}

	afcEmployee, err := parseContractRates("afcEmployeePct", req.AFCEmployeePct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}
	afcEmployer, err := parseContractRates("afcEmployerPct", req.AFCEmployerPct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}

	fonasa, err := parsePct("fonasaRatePct", req.FonasaRatePct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}
	isapreMin, err := parsePct("isapreMinPct", req.IsapreMinPct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}
	accident, err := parsePct("accidentInsurancePct", req.AccidentInsurancePct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}
	vacation, err := parsePct("vacationProvisionPct", req.VacationProvisionPct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}
	severance, err := parsePct("severanceProvisionPct", req.SeveranceProvisionPct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}
	gratification, err := parsePct("gratificationPct", req.GratificationPct)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}

	brackets, err := parseBrackets(req.TaxBrackets)
	if err != nil {
		return calc.RuleSnapshot{}, err
	}

	return calc.RuleSnapshot{
		AFPRatesPct:           afpRates,
		FonasaRatePct:         fonasa,
		IsapreMinPct:          isapreMin,
		AFCEmployeePct:        afcEmployee,
		AFCEmployerPct:        afcEmployer,
		AccidentInsurancePct:  accident,
		VacationProvisionPct:  vacation,
		SeveranceProvisionPct: severance,
		GratificationPct:      gratification,
		GratificationCapCLP:   req.GratificationCapCLP,
		TaxBrackets:           brackets,
	}, nil
}

func parseContractRates(field string, raw map[string]string) (map[calc.ContractType]decimal.Decimal, error) {
	out := make(map[calc.ContractType]decimal.Decimal, len(raw))
	for contract, rate := range raw {
		switch calc.ContractType(contract) {
		case calc.ContractIndefinite, calc.ContractFixedTerm:
		default:
			return nil, apperr.Validation(fmt.Sprintf("%s: unknown contract type %q", field, contract))
		}
		parsed, err := parsePct(field+"."+contract, rate)
		if err != nil {
			return nil, err
		}
		out[calc.ContractType(contract)] = parsed
	}

	if _, ok := out[calc.ContractIndefinite]; !ok {
		return nil, apperr.Validation(field + ": missing rate for indefinite contracts")
	}
	if _, ok := out[calc.ContractFixedTerm]; !ok {
		return nil, apperr.Validation(field + ": missing rate for fixed-term contracts")
	}
	return out, nil
}

func parseBrackets(raw []transport.TaxBracketRequest) ([]calc.TaxBracket, error) {
	brackets := make([]calc.TaxBracket, len(raw))
	var previousUpper int64
	for i, bracket := range raw {
		rate, err := parsePct(fmt.Sprintf("taxBrackets[%d].marginalRatePct", i), bracket.MarginalRate)
		if err != nil {
			return nil, err
		}

		unbounded := bracket.UpperBoundCLP == 0
		if unbounded && i != len(raw)-1 {
			return nil, apperr.Validation("taxBrackets: unbounded bracket must come last")
		}
		if !unbounded && bracket.UpperBoundCLP <= previousUpper {
			return nil, apperr.Validation("taxBrackets: upper bounds must be strictly increasing")
		}
		previousUpper = bracket.UpperBoundCLP

		brackets[i] = calc.TaxBracket{UpperBoundCLP: bracket.UpperBoundCLP, MarginalRate: rate}
	}
	return brackets, nil
}

func parsePct(field, raw string) (decimal.Decimal, error) {
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation(fmt.Sprintf("%s: not a decimal percentage: %q", field, raw))
	}
	if parsed.IsNegative() || parsed.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, apperr.Validation(fmt.Sprintf("%s: percentage out of range: %q", field, raw))
	}
	return parsed, nil
}

func toResponse(snapshot calc.RuleSnapshot, stale bool) transport.RuleSnapshotResponse {
	afpRates := make(map[string]string, len(snapshot.AFPRatesPct))
	for provider, rate := range snapshot.AFPRatesPct {
		afpRates[provider] = rate.String()
	}

	brackets := make([]transport.TaxBracketResponse, len(snapshot.TaxBrackets))
	for i, bracket := range snapshot.TaxBrackets {
		brackets[i] = transport.TaxBracketResponse{
			UpperBoundCLP: bracket.UpperBoundCLP,
			MarginalRate:  bracket.MarginalRate.String(),
		}
	}

	return transport.RuleSnapshotResponse{
		Version:               snapshot.Version,
		PublishedAt:           snapshot.PublishedAt,
		AFPRatesPct:           afpRates,
		FonasaRatePct:         snapshot.FonasaRatePct.String(),
		IsapreMinPct:          snapshot.IsapreMinPct.String(),
		AFCEmployeePct:        contractRatesToStrings(snapshot.AFCEmployeePct),
		AFCEmployerPct:        contractRatesToStrings(snapshot.AFCEmployerPct),
		AccidentInsurancePct:  snapshot.AccidentInsurancePct.String(),
		VacationProvisionPct:  snapshot.VacationProvisionPct.String(),
		SeveranceProvisionPct: snapshot.SeveranceProvisionPct.String(),
		GratificationPct:      snapshot.GratificationPct.String(),
		GratificationCapCLP:   snapshot.GratificationCapCLP,
		TaxBrackets:           brackets,
		Stale:                 stale,
	}
}

func contractRatesToStrings(rates map[calc.ContractType]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(rates))
	for contract, rate := range rates {
		out[string(contract)] = rate.String()
	}
	return out
}
