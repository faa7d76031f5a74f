package models

import (
	"database/sql"
	"time"

	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

/*
   Column    |    Type     | Collation | Nullable |      Default
-------------+-------------+-----------+----------+--------------------
 event_id    | bigint      |           | not null | generated always as identity
 tenant_id   | varchar(10) |           | not null |
 jti         | varchar(32) |           |          |
 hash_prefix | varchar(16) |           | not null | ''
 ip_hash     | varchar(16) |           | not null | ''
 user_agent  | text        |           | not null | ''
 country     | text        |           |          |
 verdict     | text        |           | not null |
 reason      | text        |           |          |
 created_at  | timestamptz |           | not null | now()
Indexes:
    "verification_events_pkey" PRIMARY KEY, btree (event_id)
    "idx_verification_events_jti" btree (jti, created_at DESC)

jti is null when verification failed before a signature could be resolved.
ip_hash is a salted SHA-256 of the client IP truncated to 16 hex chars; raw
addresses are never stored.
*/

type VerificationEvent struct {
	EventID    int64                `db:"event_id"`
	TenantID   trustcommon.TenantId `db:"tenant_id"`
	Jti        sql.NullString       `db:"jti"`
	HashPrefix string               `db:"hash_prefix"`
	IPHash     string               `db:"ip_hash"`
	UserAgent  string               `db:"user_agent"`
	Country    sql.NullString       `db:"country"`
	Verdict    string               `db:"verdict"`
	Reason     sql.NullString       `db:"reason"`
	CreatedAt  time.Time            `db:"created_at"`
}
