package api

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/campusclinic/internal/models"
)

// RecordService covers the medical records screen: the profile sheet,
// assessments and immunizations of one user.
type RecordService struct {
	c *Client
}

func (s *RecordService) assessments() resource[models.Assessment] {
	return resource[models.Assessment]{s.c, "/api/assessments"}
}

func (s *RecordService) immunizations() resource[models.Immunization] {
	return resource[models.Immunization]{s.c, "/api/immunizations"}
}

func profilePath(userID models.ID) string {
	return "/api/users/" + url.PathEscape(userID.String()) + "/medical-profile"
}

func (s *RecordService) Profile(ctx context.Context, userID models.ID) (models.MedicalProfile, error) {
	if err := requireID(userID); err != nil {
		return models.MedicalProfile{}, err
	}
	var out models.MedicalProfile
	err := s.c.do(ctx, call{method: http.MethodGet, path: profilePath(userID), out: &out})
	return out, err
}

func (s *RecordService) UpdateProfile(ctx context.Context, userID models.ID, p models.MedicalProfilePatch) (models.MedicalProfile, error) {
	if err := requireID(userID); err != nil {
		return models.MedicalProfile{}, err
	}
	var out models.MedicalProfile
	err := s.c.do(ctx, call{method: http.MethodPatch, path: profilePath(userID), body: p, out: &out})
	return out, err
}

func byUser(userID models.ID) url.Values {
	return url.Values{"user": {userID.String()}}
}

func (s *RecordService) Assessments(ctx context.Context, userID models.ID) ([]models.Assessment, error) {
	return s.assessments().list(ctx, byUser(userID))
}

func (s *RecordService) CreateAssessment(ctx context.Context, a models.Assessment) (models.Assessment, error) {
	return s.assessments().create(ctx, a)
}

func (s *RecordService) UpdateAssessment(ctx context.Context, id models.ID, a models.Assessment) (models.Assessment, error) {
	if err := requireID(id); err != nil {
		return models.Assessment{}, err
	}
	return s.assessments().update(ctx, id, a)
}

func (s *RecordService) DeleteAssessment(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.assessments().delete(ctx, id)
}

func (s *RecordService) Immunizations(ctx context.Context, userID models.ID) ([]models.Immunization, error) {
	return s.immunizations().list(ctx, byUser(userID))
}

func (s *RecordService) CreateImmunization(ctx context.Context, i models.Immunization) (models.Immunization, error) {
	return s.immunizations().create(ctx, i)
}

func (s *RecordService) UpdateImmunization(ctx context.Context, id models.ID, i models.Immunization) (models.Immunization, error) {
	if err := requireID(id); err != nil {
		return models.Immunization{}, err
	}
	return s.immunizations().update(ctx, id, i)
}

func (s *RecordService) DeleteImmunization(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.immunizations().delete(ctx, id)
}

// Record fetches the profile, assessments and immunizations of one user
// concurrently. The first failure cancels the others.
func (s *RecordService) Record(ctx context.Context, userID models.ID) (models.MedicalRecord, error) {
	if err := requireID(userID); err != nil {
		return models.MedicalRecord{}, err
	}
	var rec models.MedicalRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Profile(gctx, userID)
		rec.Profile = p
		return err
	})
	g.Go(func() error {
		a, err := s.Assessments(gctx, userID)
		rec.Assessments = a
		return err
	})
	g.Go(func() error {
		i, err := s.Immunizations(gctx, userID)
		rec.Immunizations = i
		return err
	})
	if err := g.Wait(); err != nil {
		return models.MedicalRecord{}, err
	}
	return rec, nil
}
