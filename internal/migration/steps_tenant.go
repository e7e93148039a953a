package migration

// TenantSteps are applied once per tenant schema (tenant_<gymId>).
var TenantSteps = []Step{
	{
		Version: 1,
		Name:    "identity_and_branches",
		SQL: `
			CREATE TABLE IF NOT EXISTS branches (
				id         UUID PRIMARY KEY,
				name       TEXT NOT NULL,
				is_active  BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				deleted_at TIMESTAMPTZ
			);
			CREATE TABLE IF NOT EXISTS users (
				id             UUID PRIMARY KEY,
				branch_id      UUID REFERENCES branches(id),
				name           TEXT NOT NULL,
				email          TEXT NOT NULL,
				password_hash  TEXT NOT NULL,
				role           TEXT NOT NULL,
				permissions    TEXT[] NOT NULL DEFAULT '{}',
				is_active      BOOLEAN NOT NULL DEFAULT true,
				created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
				deleted_at     TIMESTAMPTZ,
				CONSTRAINT email_format CHECK (email ~* '^[^@]+@[^@]+\.[^@]+$')
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email) WHERE deleted_at IS NULL;
		`,
	},
	{
		Version: 2,
		Name:    "plans_and_memberships",
		SQL: `
			CREATE TABLE IF NOT EXISTS plans (
				id           UUID PRIMARY KEY,
				name         TEXT NOT NULL,
				price_cents  BIGINT NOT NULL,
				duration_days INTEGER NOT NULL,
				is_active    BOOLEAN NOT NULL DEFAULT true,
				deleted_at   TIMESTAMPTZ
			);
			CREATE TABLE IF NOT EXISTS memberships (
				id           UUID PRIMARY KEY,
				user_id      UUID NOT NULL REFERENCES users(id),
				branch_id    UUID REFERENCES branches(id),
				plan_id      UUID NOT NULL REFERENCES plans(id),
				status       TEXT NOT NULL DEFAULT 'active',
				starts_at    TIMESTAMPTZ NOT NULL,
				ends_at      TIMESTAMPTZ NOT NULL,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				deleted_at   TIMESTAMPTZ,
				CONSTRAINT membership_status_valid CHECK (status IN ('active', 'frozen', 'expired', 'cancelled'))
			);
			CREATE TABLE IF NOT EXISTS membership_freezes (
				id             UUID PRIMARY KEY,
				membership_id  UUID NOT NULL REFERENCES memberships(id),
				starts_at      TIMESTAMPTZ NOT NULL,
				ends_at        TIMESTAMPTZ,
				reason         TEXT
			);
			CREATE TABLE IF NOT EXISTS membership_history (
				id             UUID PRIMARY KEY,
				membership_id  UUID NOT NULL REFERENCES memberships(id),
				event          TEXT NOT NULL,
				occurred_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 3,
		Name:    "payments_and_salaries",
		SQL: `
			CREATE TABLE IF NOT EXISTS payments (
				id             UUID PRIMARY KEY,
				membership_id  UUID REFERENCES memberships(id),
				user_id        UUID NOT NULL REFERENCES users(id),
				gross_amount   NUMERIC(12, 2) NOT NULL,
				discount       NUMERIC(12, 2) NOT NULL DEFAULT 0,
				net_amount     NUMERIC(12, 2) NOT NULL,
				currency       TEXT NOT NULL DEFAULT 'USD',
				paid_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
				CONSTRAINT net_amount_check CHECK (net_amount >= 0)
			);
			CREATE TABLE IF NOT EXISTS staff_salaries (
				id            UUID PRIMARY KEY,
				staff_id      UUID NOT NULL REFERENCES users(id),
				amount_cents  BIGINT NOT NULL,
				effective_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				deleted_at    TIMESTAMPTZ
			);
			CREATE TABLE IF NOT EXISTS staff_salary_history (
				id          UUID PRIMARY KEY,
				salary_id   UUID NOT NULL REFERENCES staff_salaries(id),
				old_amount_cents BIGINT NOT NULL,
				new_amount_cents BIGINT NOT NULL,
				changed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 4,
		Name:    "attendance_and_streaks",
		SQL: `
			CREATE TABLE IF NOT EXISTS attendances (
				id          UUID PRIMARY KEY,
				user_id     UUID NOT NULL REFERENCES users(id),
				branch_id   UUID REFERENCES branches(id),
				checked_in_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				checked_out_at TIMESTAMPTZ
			);
			CREATE TABLE IF NOT EXISTS streaks (
				user_id           UUID PRIMARY KEY REFERENCES users(id),
				current_streak    INTEGER NOT NULL DEFAULT 0,
				longest_streak    INTEGER NOT NULL DEFAULT 0,
				last_attended_on  DATE
			);
		`,
	},
	{
		Version: 5,
		Name:    "challenges_and_achievements",
		SQL: `
			CREATE TABLE IF NOT EXISTS challenges (
				id          UUID PRIMARY KEY,
				name        TEXT NOT NULL,
				metric      TEXT NOT NULL,
				target      NUMERIC NOT NULL,
				starts_at   TIMESTAMPTZ NOT NULL,
				ends_at     TIMESTAMPTZ NOT NULL,
				deleted_at  TIMESTAMPTZ
			);
			CREATE TABLE IF NOT EXISTS challenge_participants (
				id            UUID PRIMARY KEY,
				challenge_id  UUID NOT NULL REFERENCES challenges(id),
				user_id       UUID NOT NULL REFERENCES users(id),
				progress      NUMERIC NOT NULL DEFAULT 0,
				completed_at  TIMESTAMPTZ
			);
			CREATE TABLE IF NOT EXISTS achievements (
				id          UUID PRIMARY KEY,
				code        TEXT NOT NULL UNIQUE,
				name        TEXT NOT NULL,
				description TEXT
			);
			CREATE TABLE IF NOT EXISTS user_achievements (
				id             UUID PRIMARY KEY,
				user_id        UUID NOT NULL REFERENCES users(id),
				achievement_id UUID NOT NULL REFERENCES achievements(id),
				earned_at      TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 6,
		Name:    "loyalty_program",
		SQL: `
			CREATE TABLE IF NOT EXISTS loyalty_configs (
				id                  UUID PRIMARY KEY,
				points_per_currency NUMERIC NOT NULL DEFAULT 1,
				is_active           BOOLEAN NOT NULL DEFAULT true
			);
			CREATE TABLE IF NOT EXISTS loyalty_tiers (
				id              UUID PRIMARY KEY,
				name            TEXT NOT NULL,
				minimum_points  BIGINT NOT NULL
			);
			CREATE TABLE IF NOT EXISTS loyalty_points (
				user_id  UUID PRIMARY KEY REFERENCES users(id),
				balance  BIGINT NOT NULL DEFAULT 0,
				CONSTRAINT points_balance_nonnegative CHECK (balance >= 0)
			);
			CREATE TABLE IF NOT EXISTS loyalty_transactions (
				id          UUID PRIMARY KEY,
				user_id     UUID NOT NULL REFERENCES users(id),
				points      BIGINT NOT NULL,
				reason      TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 7,
		Name:    "engagement_and_churn",
		SQL: `
			CREATE TABLE IF NOT EXISTS engagement_scores (
				id           UUID PRIMARY KEY,
				user_id      UUID NOT NULL REFERENCES users(id),
				score        NUMERIC NOT NULL,
				is_current   BOOLEAN NOT NULL DEFAULT true,
				computed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE TABLE IF NOT EXISTS churn_alerts (
				id          UUID PRIMARY KEY,
				user_id     UUID NOT NULL REFERENCES users(id),
				reason      TEXT NOT NULL,
				raised_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				resolved_at TIMESTAMPTZ
			);
		`,
	},
	{
		Version: 8,
		Name:    "notifications_and_announcements",
		SQL: `
			CREATE TABLE IF NOT EXISTS notifications (
				id          UUID PRIMARY KEY,
				user_id     UUID NOT NULL REFERENCES users(id),
				title       TEXT NOT NULL,
				body        TEXT NOT NULL,
				read_at     TIMESTAMPTZ,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE TABLE IF NOT EXISTS announcements (
				id          UUID PRIMARY KEY,
				branch_id   UUID REFERENCES branches(id),
				title       TEXT NOT NULL,
				body        TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 9,
		Name:    "seed_lookups",
		SQL: `
			CREATE TABLE IF NOT EXISTS cancellation_reasons (
				id    UUID PRIMARY KEY,
				label TEXT NOT NULL UNIQUE
			);
			CREATE TABLE IF NOT EXISTS lead_sources (
				id    UUID PRIMARY KEY,
				label TEXT NOT NULL UNIQUE
			);
			CREATE TABLE IF NOT EXISTS product_categories (
				id    UUID PRIMARY KEY,
				label TEXT NOT NULL UNIQUE
			);
			CREATE TABLE IF NOT EXISTS campaign_templates (
				id      UUID PRIMARY KEY,
				name    TEXT NOT NULL,
				subject TEXT NOT NULL,
				body    TEXT NOT NULL
			);
		`,
	},
}
