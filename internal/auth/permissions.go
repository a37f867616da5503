package auth

// Permission is a named capability.
type Permission string

const (
	PermDeviceRead       Permission = "device:read"
	PermDeviceOperate    Permission = "device:operate"     // own devices
	PermDeviceOperateAny Permission = "device:operate:any" // any owner's devices
	PermDeviceManage     Permission = "device:manage"      // create/delete own devices
	PermDeviceManageAny  Permission = "device:manage:any"
	PermStatusRead       Permission = "status:read"
	PermAuditRead        Permission = "audit:read"
	PermUserManage       Permission = "user:manage"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleHomeowner: {
		PermDeviceRead,
		PermDeviceOperate,
		PermDeviceManage,
		PermStatusRead,
	},
	RoleAdmin: {
		PermDeviceRead,
		PermDeviceOperate,
		PermDeviceOperateAny,
		PermDeviceManage,
		PermDeviceManageAny,
		PermStatusRead,
		PermAuditRead,
		PermUserManage,
	},
}

// HasPermission returns true if role grants perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the permissions granted to role,
// or nil for an unknown role.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// CanOperate reports whether u may send commands to a device owned by ownerID.
func CanOperate(u *User, ownerID string) bool {
	if u == nil {
		return false
	}
	if HasPermission(u.Role, PermDeviceOperateAny) {
		return true
	}
	return u.Email == ownerID && HasPermission(u.Role, PermDeviceOperate)
}

// CanManage reports whether u may create or delete devices for ownerID.
func CanManage(u *User, ownerID string) bool {
	if u == nil {
		return false
	}
	if HasPermission(u.Role, PermDeviceManageAny) {
		return true
	}
	return u.Email == ownerID && HasPermission(u.Role, PermDeviceManage)
}
