package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/pkg/security"
)

type seedUser struct {
	Email     string
	Password  string
	Role      model.Role
	FirstName string
	LastName  string
	Phone     string
}

type seedDoctor struct {
	seedUser
	Specialization     string
	Qualification      string
	ExperienceYears    int
	HospitalName       string
	HospitalAddress    string
	RegistrationNumber string
	Bio                string
	ConsultationFee    float64
	Rating             float64
}

type seedPatient struct {
	seedUser
	DateOfBirth       string
	Gender            string
	BloodGroup        string
	City              string
	State             string
	Allergies         *string
	ChronicConditions *string
}

type seedArticle struct {
	Title    string
	Content  string
	Category string
}

func optional(s string) *string { return &s }

var seedAdmin = seedUser{
	Email:     "admin@telehealth.com",
	Password:  "admin123",
	Role:      model.RoleAdmin,
	FirstName: "System",
	LastName:  "Admin",
}

var seedDoctors = []seedDoctor{
	{
		seedUser:           seedUser{"dr.sharma@telehealth.com", "doctor123", model.RoleDoctor, "Rajesh", "Sharma", "+91-9876543210"},
		Specialization:     "Cardiologist",
		Qualification:      "MBBS, MD (Cardiology)",
		ExperienceYears:    15,
		HospitalName:       "Apollo Hospital",
		HospitalAddress:    "Jubilee Hills, Hyderabad",
		RegistrationNumber: "MCI-12345",
		Bio:                "Experienced cardiologist specializing in heart disease prevention and treatment.",
		ConsultationFee:    800,
		Rating:             4.8,
	},
	{
		seedUser:           seedUser{"dr.patel@telehealth.com", "doctor123", model.RoleDoctor, "Priya", "Patel", "+91-9876543211"},
		Specialization:     model.DefaultSpecialization,
		Qualification:      "MBBS, MD (General Medicine)",
		ExperienceYears:    10,
		HospitalName:       "Fortis Hospital",
		HospitalAddress:    "Bannerghatta Road, Bangalore",
		RegistrationNumber: "MCI-23456",
		Bio:                "General physician treating common ailments, with a focus on preventive care.",
		ConsultationFee:    500,
		Rating:             4.6,
	},
	{
		seedUser:           seedUser{"dr.kumar@telehealth.com", "doctor123", model.RoleDoctor, "Amit", "Kumar", "+91-9876543212"},
		Specialization:     "Pediatrician",
		Qualification:      "MBBS, MD (Pediatrics)",
		ExperienceYears:    12,
		HospitalName:       "Max Healthcare",
		HospitalAddress:    "Saket, New Delhi",
		RegistrationNumber: "MCI-34567",
		Bio:                "Pediatrician specializing in child health and development.",
		ConsultationFee:    600,
		Rating:             4.7,
	},
	{
		seedUser:           seedUser{"dr.reddy@telehealth.com", "doctor123", model.RoleDoctor, "Lakshmi", "Reddy", "+91-9876543213"},
		Specialization:     "Dermatologist",
		Qualification:      "MBBS, MD (Dermatology)",
		ExperienceYears:    8,
		HospitalName:       "KIMS Hospital",
		HospitalAddress:    "Secunderabad, Telangana",
		RegistrationNumber: "MCI-45678",
		Bio:                "Dermatologist treating skin conditions common in rural areas.",
		ConsultationFee:    700,
		Rating:             4.5,
	},
}

var seedPatients = []seedPatient{
	{
		seedUser:    seedUser{"ramesh.kumar@example.com", "patient123", model.RolePatient, "Ramesh", "Kumar", "+91-9123456789"},
		DateOfBirth: "1985-05-15",
		Gender:      "Male",
		BloodGroup:  "O+",
		City:        "Ranchi",
		State:       "Jharkhand",
		Allergies:   optional("Penicillin"),
	},
	{
		seedUser:          seedUser{"sunita.devi@example.com", "patient123", model.RolePatient, "Sunita", "Devi", "+91-9123456790"},
		DateOfBirth:       "1990-08-22",
		Gender:            "Female",
		BloodGroup:        "A+",
		City:              "Patna",
		State:             "Bihar",
		ChronicConditions: optional("Diabetes Type 2"),
	},
}

var seedArticles = []seedArticle{
	{
		Title: "Understanding Diabetes: Prevention and Management",
		Content: "Diabetes is a chronic condition that affects how your body processes blood sugar.\n\n" +
			"1. Eat whole grains, fruits, vegetables and lean proteins.\n" +
			"2. Aim for at least 30 minutes of moderate activity daily.\n" +
			"3. Maintain a healthy weight.\n" +
			"4. Check blood sugar levels as recommended.\n" +
			"5. Take prescribed medications on time.",
		Category: "Chronic Diseases",
	},
	{
		Title: "Heart Health: Tips for a Healthy Heart",
		Content: "Your heart is your body's engine.\n\n" +
			"1. Include omega-3 fatty acids and reduce saturated fats.\n" +
			"2. Regular cardiovascular exercise strengthens your heart.\n" +
			"3. Practice relaxation techniques to manage stress.\n" +
			"4. Quit smoking.\n" +
			"5. Monitor and manage blood pressure.",
		Category: "Heart Health",
	},
	{
		Title: "Common Cold vs Flu: Know the Difference",
		Content: "Both are respiratory illnesses but differ in severity.\n\n" +
			"A cold comes on gradually with mild symptoms such as a runny nose or sore throat.\n" +
			"Flu starts suddenly with high fever and body aches and can lead to complications.\n\n" +
			"See a doctor for a fever lasting more than 3 days, difficulty breathing or chest pain.",
		Category: "General Health",
	},
}

// workingDays are Monday to Friday in time.Weekday numbering.
var workingDays = []int{1, 2, 3, 4, 5}

type SeedResult struct {
	Admin    uuid.UUID
	Doctors  int
	Patients int
	Articles int
}

// Seeder loads demo accounts and content. Every insert skips rows that
// already exist, so running it twice is harmless.
type Seeder struct {
	BaseRepository
	hasher security.PasswordHasher
}

func NewSeeder(db *sqlx.DB, hasher security.PasswordHasher) *Seeder {
	return &Seeder{BaseRepository: NewBaseRepository(db), hasher: hasher}
}

func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		adminID, err := s.user(ctx, tx, seedAdmin)
		if err != nil {
			return err
		}
		result.Admin = adminID

		for _, d := range seedDoctors {
			if err := s.doctor(ctx, tx, d); err != nil {
				return err
			}
			result.Doctors++
		}

		for _, p := range seedPatients {
			if err := s.patient(ctx, tx, p); err != nil {
				return err
			}
			result.Patients++
		}

		for _, a := range seedArticles {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO health_articles (title, content, category, author_id, is_published)
				SELECT $1, $2, $3, $4, TRUE
				WHERE NOT EXISTS (SELECT 1 FROM health_articles WHERE title = $1)
			`, a.Title, a.Content, a.Category, adminID)
			if err != nil {
				return fmt.Errorf("failed to seed article %q: %w", a.Title, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				result.Articles++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("doctors", result.Doctors).
		Int("patients", result.Patients).
		Int("new_articles", result.Articles).
		Msg("database seeded")
	return result, nil
}

// user inserts an approved, active account or returns the id of the
// existing one with that email.
func (s *Seeder) user(ctx context.Context, tx *sqlx.Tx, u seedUser) (uuid.UUID, error) {
	hash, err := s.hasher.Hash(u.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password for %s: %w", u.Email, err)
	}

	var phone *string
	if u.Phone != "" {
		phone = &u.Phone
	}

	var id uuid.UUID
	err = tx.GetContext(ctx, &id, `
		INSERT INTO users (email, password_hash, role, first_name, last_name, phone, is_approved, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, TRUE)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`, u.Email, hash, u.Role, u.FirstName, u.LastName, phone)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &id, `SELECT id FROM users WHERE email = $1`, u.Email)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
	}
	return id, nil
}

func (s *Seeder) doctor(ctx context.Context, tx *sqlx.Tx, d seedDoctor) error {
	id, err := s.user(ctx, tx, d.seedUser)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO doctor_profiles (
			user_id, specialization, qualification, experience_years, hospital_name,
			hospital_address, registration_number, bio, consultation_fee, rating
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO NOTHING
	`, id, d.Specialization, d.Qualification, d.ExperienceYears, d.HospitalName,
		d.HospitalAddress, d.RegistrationNumber, d.Bio, d.ConsultationFee, d.Rating)
	if err != nil {
		return fmt.Errorf("failed to seed profile for %s: %w", d.Email, err)
	}

	for _, day := range workingDays {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO availability_slots (doctor_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, '09:00', '17:00')
			ON CONFLICT (doctor_id, day_of_week, start_time) DO NOTHING
		`, id, day)
		if err != nil {
			return fmt.Errorf("failed to seed availability for %s: %w", d.Email, err)
		}
	}
	return nil
}

func (s *Seeder) patient(ctx context.Context, tx *sqlx.Tx, p seedPatient) error {
	id, err := s.user(ctx, tx, p.seedUser)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO patient_profiles (
			user_id, date_of_birth, gender, blood_group, city, state, allergies, chronic_conditions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING
	`, id, p.DateOfBirth, p.Gender, p.BloodGroup, p.City, p.State, p.Allergies, p.ChronicConditions)
	if err != nil {
		return fmt.Errorf("failed to seed profile for %s: %w", p.Email, err)
	}
	return nil
}
