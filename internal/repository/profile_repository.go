package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// ProfileRepository defines persistence access for applicant/agent profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, p *domain.Profile) error
	Upsert(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)

	// GovernmentIDExists reports whether the ID number is already claimed by a
	// profile other than excludeEmail's.
	GovernmentIDExists(ctx context.Context, governmentID, excludeEmail string) (bool, error)

	// IsSupervisor and GetCredentials back the credential resolver cascade.
	IsSupervisor(ctx context.Context, id string) (bool, error)
	GetCredentials(ctx context.Context, id string) (domain.Role, error)

	SetPasswordHash(ctx context.Context, id, hash string) error
	SetVideoWatched(ctx context.Context, id string) error
	SetQuizResult(ctx context.Context, id string, score int, passed bool) error
	UpdateBanking(ctx context.Context, id, routing, account, accountType string) error
	UpdateAdminFields(ctx context.Context, id string, fields domain.AdminFields) error
	SearchAgents(ctx context.Context, search string) ([]domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `
	id, email, password_hash,
	first_name, last_name, birth_date, government_id, id_image_url,
	cpu, ram, has_headset, has_quiet_place, speed_test_url, system_settings_url,
	available_days, day_hours, sales_experience, service_experience,
	meet_obligation, login_discord, check_emails, solve_problems, complete_training,
	personal_statement, accepted_terms, application_status,
	video_watched, quiz_passed, quiz_score, credentials,
	agent_id, agent_standing, lead_source, start_date, supervisor_notes,
	routing_number, account_number, account_type,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p         domain.Profile
		headset   *bool
		quiet     *bool
		dayHours  []byte
		meet      *bool
		discord   *bool
		emails    *bool
		problems  *bool
		training  *bool
	)

	if err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash,
		&p.FirstName, &p.LastName, &p.BirthDate, &p.GovernmentID, &p.IDImageURL,
		&p.CPU, &p.RAM, &headset, &quiet, &p.SpeedTestURL, &p.SystemSettingsURL,
		&p.AvailableDays, &dayHours, &p.SalesExperience, &p.ServiceExperience,
		&meet, &discord, &emails, &problems, &training,
		&p.PersonalStatement, &p.AcceptedTerms, &p.ApplicationStatus,
		&p.VideoWatched, &p.QuizPassed, &p.QuizScore, &p.Credentials,
		&p.AgentID, &p.AgentStanding, &p.LeadSource, &p.StartDate, &p.SupervisorNotes,
		&p.RoutingNumber, &p.AccountNumber, &p.AccountType,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.HasHeadset = domain.AnswerFromBoolPtr(headset)
	p.HasQuietPlace = domain.AnswerFromBoolPtr(quiet)
	p.MeetObligation = domain.AnswerFromBoolPtr(meet)
	p.LoginDiscord = domain.AnswerFromBoolPtr(discord)
	p.CheckEmails = domain.AnswerFromBoolPtr(emails)
	p.SolveProblems = domain.AnswerFromBoolPtr(problems)
	p.CompleteTraining = domain.AnswerFromBoolPtr(training)

	if len(dayHours) > 0 {
		if err := json.Unmarshal(dayHours, &p.DayHours); err != nil {
			return nil, fmt.Errorf("decode day_hours: %w", err)
		}
	}
	return &p, nil
}

func profileArgs(p *domain.Profile) ([]any, error) {
	dayHours, err := json.Marshal(p.DayHours)
	if err != nil {
		return nil, fmt.Errorf("encode day_hours: %w", err)
	}
	if p.DayHours == nil {
		dayHours = []byte("{}")
	}
	return []any{
		p.Email, p.PasswordHash,
		p.FirstName, p.LastName, p.BirthDate, p.GovernmentID, p.IDImageURL,
		p.CPU, p.RAM, p.HasHeadset.BoolPtr(), p.HasQuietPlace.BoolPtr(), p.SpeedTestURL, p.SystemSettingsURL,
		p.AvailableDays, dayHours, p.SalesExperience, p.ServiceExperience,
		p.MeetObligation.BoolPtr(), p.LoginDiscord.BoolPtr(), p.CheckEmails.BoolPtr(),
		p.SolveProblems.BoolPtr(), p.CompleteTraining.BoolPtr(),
		p.PersonalStatement, p.AcceptedTerms, p.ApplicationStatus,
		p.VideoWatched, p.QuizPassed, p.QuizScore, p.Credentials,
	}, nil
}

const profileInsertColumns = `
	email, password_hash,
	first_name, last_name, birth_date, government_id, id_image_url,
	cpu, ram, has_headset, has_quiet_place, speed_test_url, system_settings_url,
	available_days, day_hours, sales_experience, service_experience,
	meet_obligation, login_discord, check_emails, solve_problems, complete_training,
	personal_statement, accepted_terms, application_status,
	video_watched, quiz_passed, quiz_score, credentials`

const profileInsertValues = `$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29`

const profileUpdateSet = `
	first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name,
	birth_date=EXCLUDED.birth_date, government_id=EXCLUDED.government_id,
	id_image_url=EXCLUDED.id_image_url, cpu=EXCLUDED.cpu, ram=EXCLUDED.ram,
	has_headset=EXCLUDED.has_headset, has_quiet_place=EXCLUDED.has_quiet_place,
	speed_test_url=EXCLUDED.speed_test_url, system_settings_url=EXCLUDED.system_settings_url,
	available_days=EXCLUDED.available_days, day_hours=EXCLUDED.day_hours,
	sales_experience=EXCLUDED.sales_experience, service_experience=EXCLUDED.service_experience,
	meet_obligation=EXCLUDED.meet_obligation, login_discord=EXCLUDED.login_discord,
	check_emails=EXCLUDED.check_emails, solve_problems=EXCLUDED.solve_problems,
	complete_training=EXCLUDED.complete_training,
	personal_statement=EXCLUDED.personal_statement, accepted_terms=EXCLUDED.accepted_terms,
	application_status=EXCLUDED.application_status, updated_at=NOW()`

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	args, err := profileArgs(p)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO profiles (%s) VALUES (%s) RETURNING id, created_at, updated_at`,
		profileInsertColumns, profileInsertValues)
	return r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *profileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	args, err := profileArgs(p)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO profiles (%s) VALUES (%s)
		ON CONFLICT (email) DO UPDATE SET %s
		RETURNING id, created_at, updated_at`,
		profileInsertColumns, profileInsertValues, profileUpdateSet)
	return r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	dayHours, err := json.Marshal(p.DayHours)
	if err != nil {
		return fmt.Errorf("encode day_hours: %w", err)
	}
	const query = `
		UPDATE profiles SET
			first_name=$1, last_name=$2, birth_date=$3, government_id=$4, id_image_url=$5,
			cpu=$6, ram=$7, has_headset=$8, has_quiet_place=$9,
			speed_test_url=$10, system_settings_url=$11,
			available_days=$12, day_hours=$13, sales_experience=$14, service_experience=$15,
			meet_obligation=$16, login_discord=$17, check_emails=$18, solve_problems=$19,
			complete_training=$20, personal_statement=$21, accepted_terms=$22,
			application_status=$23, updated_at=NOW()
		WHERE id=$24`
	cmd, err := r.pool.Exec(ctx, query,
		p.FirstName, p.LastName, p.BirthDate, p.GovernmentID, p.IDImageURL,
		p.CPU, p.RAM, p.HasHeadset.BoolPtr(), p.HasQuietPlace.BoolPtr(),
		p.SpeedTestURL, p.SystemSettingsURL,
		p.AvailableDays, dayHours, p.SalesExperience, p.ServiceExperience,
		p.MeetObligation.BoolPtr(), p.LoginDiscord.BoolPtr(), p.CheckEmails.BoolPtr(),
		p.SolveProblems.BoolPtr(), p.CompleteTraining.BoolPtr(),
		p.PersonalStatement, p.AcceptedTerms, p.ApplicationStatus, p.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id=$1`, profileColumns)
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email=$1`, profileColumns)
	return scanProfile(r.pool.QueryRow(ctx, query, email))
}

func (r *profileRepository) GovernmentIDExists(ctx context.Context, governmentID, excludeEmail string) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM profiles WHERE government_id=$1 AND email<>$2
		)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, governmentID, excludeEmail).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *profileRepository) IsSupervisor(ctx context.Context, id string) (bool, error) {
	const query = `SELECT credentials IN ('supervisor','admin') FROM profiles WHERE id=$1`
	var isSupervisor bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&isSupervisor); err != nil {
		return false, err
	}
	return isSupervisor, nil
}

func (r *profileRepository) GetCredentials(ctx context.Context, id string) (domain.Role, error) {
	const query = `SELECT credentials FROM profiles WHERE id=$1`
	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, id).Scan(&role); err != nil {
		return "", err
	}
	return role, nil
}

func (r *profileRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	const query = `UPDATE profiles SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) SetVideoWatched(ctx context.Context, id string) error {
	const query = `UPDATE profiles SET video_watched=TRUE, updated_at=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) SetQuizResult(ctx context.Context, id string, score int, passed bool) error {
	const query = `UPDATE profiles SET quiz_score=$1, quiz_passed=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, score, passed, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) UpdateBanking(ctx context.Context, id, routing, account, accountType string) error {
	const query = `
		UPDATE profiles SET routing_number=$1, account_number=$2, account_type=$3, updated_at=NOW()
		WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, routing, account, accountType, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) UpdateAdminFields(ctx context.Context, id string, fields domain.AdminFields) error {
	const query = `
		UPDATE profiles SET
			agent_id=$1, agent_standing=$2, lead_source=$3, start_date=$4,
			supervisor_notes=$5, updated_at=NOW()
		WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		fields.AgentID, fields.AgentStanding, fields.LeadSource, fields.StartDate,
		fields.SupervisorNotes, id,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) SearchAgents(ctx context.Context, search string) ([]domain.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM profiles
		WHERE (credentials <> 'applicant' OR application_status = 'approved')
		AND credentials NOT IN ('supervisor', 'admin')`, profileColumns)
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		query += `
		AND (first_name ILIKE $1 OR last_name ILIKE $1 OR government_id ILIKE $1
			OR application_status::text ILIKE $1)`
		args = append(args, "%"+s+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}
