// Package auth manages HomeGuard user accounts and their authorisation.
//
// There are two roles. A homeowner operates the devices they own; an admin
// may operate any device and manage accounts. Permissions are a static
// role-to-capability table (permissions.go), so checks need no database.
//
// Passwords are stored as Argon2id PHC strings. Login and session handling
// live outside this package; callers identify the acting user by email.
package auth
