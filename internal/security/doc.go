// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security keeps local secrets sealed and gates order entry.
//
// Two concerns live here:
//
//   - Vault: the backend API token (and any other local secret) sealed at
//     rest with a passphrase-derived key. PBKDF2-SHA-256 stretches the
//     passphrase, AES-256-GCM seals the value, and sealed files carry the
//     "ENC:" marker so plaintext and sealed values can coexist during
//     migration.
//
//   - Interlock: an optional TOTP arming step in front of order submission.
//     Enrolling provisions a TOTP secret for an authenticator app; a valid
//     code then arms order entry for a bounded window. The interlock is
//     client-side only and holds no exchange credentials.
//
// Nothing in this package talks to the network.
package security
