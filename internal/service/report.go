package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zobaczyc-morze/crewreg/internal/domain"
	"github.com/zobaczyc-morze/crewreg/internal/repo"
	"github.com/zobaczyc-morze/crewreg/internal/report"
)

// ReportService assembles trip reports. The sections come from independent
// queries, so they are fetched concurrently.
type ReportService struct {
	trips     repo.TripRepo
	regs      repo.RegistrationRepo
	groups    repo.WatchGroupRepo
	movements repo.MovementRepo
	sensitive repo.SensitiveRepo
	audit     *AuditService
}

func NewReportService(
	trips repo.TripRepo,
	regs repo.RegistrationRepo,
	groups repo.WatchGroupRepo,
	movements repo.MovementRepo,
	sensitive repo.SensitiveRepo,
	audit *AuditService,
) *ReportService {
	return &ReportService{
		trips:     trips,
		regs:      regs,
		groups:    groups,
		movements: movements,
		sensitive: sensitive,
		audit:     audit,
	}
}

// BuildTripReport gathers everything a report render needs.
//
// includeSensitive adds the plaintext embarkation sheet; the HTTP layer only
// allows it for admins. Every build is recorded as an export event, with the
// sensitive inclusion spelled out in the detail.
func (s *ReportService) BuildTripReport(ctx context.Context, tripID uuid.UUID, includeSensitive bool) (report.TripReport, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return report.TripReport{}, fmt.Errorf("service.ReportService.BuildTripReport: %w", err)
	}

	var (
		regs      []domain.Registration
		groups    []domain.WatchGroup
		sums      map[uuid.UUID]domain.Cents
		ledger    []domain.MoneyMovement
		sensitive []domain.SensitiveRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regs, err = s.regs.ListByTrip(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.groups.ListByTrip(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		sums, err = s.movements.SumPaidByTrip(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		ledger, err = s.movements.ListByTrip(gctx, tripID)
		return err
	})
	if includeSensitive {
		g.Go(func() error {
			var err error
			sensitive, err = s.sensitive.ListByTrip(gctx, tripID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return report.TripReport{}, fmt.Errorf("service.ReportService.BuildTripReport: %w", err)
	}

	groupNames := make(map[uuid.UUID]string, len(groups))
	for _, wg := range groups {
		groupNames[wg.ID] = wg.Name
	}
	regNames := make(map[uuid.UUID]string, len(regs))

	result := report.TripReport{Trip: trip}
	for _, reg := range regs {
		regNames[reg.ID] = reg.FullName()

		paid := sums[reg.ID]

		var groupName string
		if reg.WatchGroupID != nil {
			groupName = groupNames[*reg.WatchGroupID]
		}

		result.Crew = append(result.Crew, report.CrewRow{
			FirstName:    reg.FirstName,
			LastName:     reg.LastName,
			Email:        reg.Email,
			Phone:        reg.Phone,
			Role:         reg.Role,
			Vision:       reg.Vision,
			WatchGroup:   groupName,
			Status:       reg.Status,
			SailedBefore: reg.SailedBefore,
			Paid:         paid,
			Due:          trip.PriceCents - paid,
		})
	}

	// Watch roster: members in group order, empty groups kept visible.
	for _, wg := range groups {
		members := 0
		for _, reg := range regs {
			if reg.WatchGroupID == nil || *reg.WatchGroupID != wg.ID {
				continue
			}
			result.Watches = append(result.Watches, report.WatchRow{
				Group:  wg.Name,
				Member: reg.FullName(),
				Role:   reg.Role,
				Vision: reg.Vision,
			})
			members++
		}
		if members == 0 {
			result.Watches = append(result.Watches, report.WatchRow{Group: wg.Name})
		}
	}

	for _, m := range ledger {
		result.Payments = append(result.Payments, report.PaymentRow{
			FullName:    regNames[m.RegistrationID],
			Kind:        m.Kind,
			Amount:      m.AmountCents,
			Description: m.Description,
			OrderID:     m.ExternalSourceID,
			RecordedAt:  m.CreatedAt,
		})
	}

	if includeSensitive {
		// Non-nil even when empty, so the render knows the sheet was asked for.
		result.Sensitive = []report.SensitiveRow{}
		for _, rec := range sensitive {
			result.Sensitive = append(result.Sensitive, report.SensitiveRow{
				FullName:       regNames[rec.RegistrationID],
				NationalID:     rec.NationalID,
				DocumentType:   rec.DocumentType,
				DocumentNumber: rec.DocumentNumber,
			})
		}
	}

	detail := "crew manifest export"
	if includeSensitive {
		detail = "crew manifest export including sensitive data"
	}
	s.audit.Record(ctx, domain.AuditExport, "trip", trip.ID.String(), trip.Name, detail)
	return result, nil
}
