package migration

// MainSteps are applied once per cluster, against the public schema.
var MainSteps = []Step{
	{
		Version: 1,
		Name:    "sessions",
		SQL: `
			CREATE TABLE IF NOT EXISTS sessions (
				id                  UUID PRIMARY KEY,
				user_id             UUID NOT NULL,
				refresh_token_hash  TEXT NOT NULL,
				user_agent          TEXT,
				ip_address          TEXT,
				expires_at          TIMESTAMPTZ NOT NULL,
				created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
				last_used_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
				revoked_at          TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_refresh_hash ON sessions (refresh_token_hash);
			CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions (user_id);
		`,
	},
	{
		Version: 2,
		Name:    "tenants",
		SQL: `
			CREATE TABLE IF NOT EXISTS tenants (
				id                  UUID PRIMARY KEY,
				name                TEXT NOT NULL,
				owner_id            UUID NOT NULL,
				tenant_schema_name  TEXT NOT NULL UNIQUE,
				is_active           BOOLEAN NOT NULL DEFAULT true,
				created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 3,
		Name:    "platform_users",
		SQL: `
			CREATE TABLE IF NOT EXISTS platform_users (
				id              UUID PRIMARY KEY,
				name            TEXT NOT NULL,
				email           TEXT NOT NULL,
				password_hash   TEXT NOT NULL,
				role            TEXT NOT NULL CHECK (role IN ('superadmin', 'admin')),
				gym_id          UUID REFERENCES tenants(id),
				branch_id       UUID,
				is_super_admin  BOOLEAN NOT NULL DEFAULT false,
				is_active       BOOLEAN NOT NULL DEFAULT true,
				created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
				deleted_at      TIMESTAMPTZ,
				CONSTRAINT email_format CHECK (email ~* '^[^@]+@[^@]+\.[^@]+$')
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_platform_users_email ON platform_users (email) WHERE deleted_at IS NULL;
		`,
	},
	{
		Version: 4,
		Name:    "subscription_plans",
		SQL: `
			CREATE TABLE IF NOT EXISTS subscription_plans (
				id         UUID PRIMARY KEY,
				name       TEXT NOT NULL,
				features   TEXT[] NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE TABLE IF NOT EXISTS tenant_subscriptions (
				tenant_id  UUID PRIMARY KEY REFERENCES tenants(id),
				plan_id    UUID NOT NULL REFERENCES subscription_plans(id),
				is_active  BOOLEAN NOT NULL DEFAULT true,
				started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				ends_at    TIMESTAMPTZ
			);
		`,
	},
	{
		Version: 5,
		Name:    "system_notifications",
		SQL: `
			CREATE TABLE IF NOT EXISTS system_notifications (
				id         UUID PRIMARY KEY,
				user_id    UUID NOT NULL,
				title      TEXT NOT NULL,
				body       TEXT NOT NULL,
				read_at    TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_system_notifications_user ON system_notifications (user_id, read_at);
		`,
	},
	{
		Version: 6,
		Name:    "support_and_contact",
		SQL: `
			CREATE TABLE IF NOT EXISTS support_tickets (
				id         UUID PRIMARY KEY,
				gym_id     UUID REFERENCES tenants(id),
				subject    TEXT NOT NULL,
				status     TEXT NOT NULL DEFAULT 'open',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE TABLE IF NOT EXISTS support_ticket_messages (
				id          UUID PRIMARY KEY,
				ticket_id   UUID NOT NULL REFERENCES support_tickets(id),
				author_id   UUID NOT NULL,
				body        TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE TABLE IF NOT EXISTS contact_requests (
				id         UUID PRIMARY KEY,
				name       TEXT NOT NULL,
				email      TEXT NOT NULL,
				message    TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
	{
		Version: 7,
		Name:    "currencies",
		SQL: `
			CREATE TABLE IF NOT EXISTS currencies (
				code           TEXT PRIMARY KEY,
				name           TEXT NOT NULL,
				exchange_rate  NUMERIC(18, 6) NOT NULL DEFAULT 1
			);
			INSERT INTO currencies (code, name, exchange_rate)
			SELECT 'USD', 'US Dollar', 1
			WHERE NOT EXISTS (SELECT 1 FROM currencies WHERE code = 'USD');
		`,
	},
}
