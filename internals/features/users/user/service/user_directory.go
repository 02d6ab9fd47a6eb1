package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/users/user/dto"
	"thesis_backend/internals/features/users/user/model"
	"thesis_backend/internals/features/users/user/repository"
	"thesis_backend/internals/helpers/apperr"
)

// CheckNames mengelompokkan user yang cocok per nama (urutan input dipertahankan).
func CheckNames(ctx context.Context, db *gorm.DB, names []string, role constants.Role) ([]dto.NameMatch, error) {
	users, err := repository.FindUsersByNames(ctx, db, names, role)
	if err != nil {
		return nil, apperr.Internal("failed to look up users", err)
	}
	byName := map[string][]model.UserModel{}
	for _, u := range users {
		key := strings.ToLower(strings.TrimSpace(u.Name))
		byName[key] = append(byName[key], u)
	}

	out := make([]dto.NameMatch, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		m := dto.NameMatch{Name: strings.TrimSpace(n), Matches: []dto.UserBrief{}}
		for _, u := range byName[key] {
			m.Matches = append(m.Matches, dto.ToUserBrief(u))
		}
		out = append(out, m)
	}
	return out, nil
}

// ResolveUniqueNames mengubah nama tampilan menjadi id; nama yang tidak ditemukan
// atau kembar menjadi ValidationError pada field yang diberikan.
func ResolveUniqueNames(ctx context.Context, db *gorm.DB, field string, names []string, role constants.Role) ([]uuid.UUID, error) {
	matches, err := CheckNames(ctx, db, names, role)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(matches))
	var problems []string
	for _, m := range matches {
		switch len(m.Matches) {
		case 1:
			ids = append(ids, m.Matches[0].ID)
		case 0:
			problems = append(problems, "not_found:"+m.Name)
		default:
			problems = append(problems, "ambiguous:"+m.Name)
		}
	}
	if len(problems) > 0 {
		return nil, apperr.ValidationFields(
			"some "+string(role)+" names could not be resolved; use ids instead",
			map[string][]string{field: problems},
		)
	}
	return ids, nil
}
