// Package api is the HomeGuard operator HTTP API.
//
// Routes (all under /api/v1):
//
//	GET    /health                     liveness and collaborator health
//	POST   /users                      register a homeowner (admins may create admins)
//	GET    /status                     status board snapshot and monitor state
//	GET    /devices?owner=             list devices (defaults to the caller's)
//	POST   /devices                    create a device
//	POST   /devices/defaults           add the demo devices to an empty account
//	GET    /devices/stats              counts by kind and status (admin)
//	GET    /devices/{id}               one device
//	DELETE /devices/{id}               delete a device
//	POST   /devices/{id}/commands      turn_on, turn_off, adjust_setting
//	GET    /audit                      audit trail (admin)
//	GET    /users                      list accounts (admin)
//	GET    /users/me                   caller's account
//	PATCH  /users/me                   change display name
//	PUT    /users/me/password          change password
//	DELETE /users/{email}              delete an account (admin)
//
// The caller is named by the X-User-Email header and looked up in the user
// store. There is no session layer; the API is meant to sit behind a
// trusted gateway.
package api
