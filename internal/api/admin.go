package api

import "context"

// Users lists every account. Admin only; non-admin callers get a 403
// that surfaces as an *Error.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doJSON(ctx, "GET", "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserQuota sets a user's quota ceiling in bytes and returns the
// server's authoritative user object.
func (c *Client) UpdateUserQuota(ctx context.Context, userID, quotaMax int64) (User, error) {
	var req struct {
		QuotaMax int64 `json:"quota_max"`
	}
	req.QuotaMax = quotaMax

	var u User
	if err := c.doJSON(ctx, "PUT", "/api/admin/users/"+itoa(userID)+"/quota", req, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// StorageStats fetches the cross-user deduplication aggregates.
func (c *Client) StorageStats(ctx context.Context) (StorageStats, error) {
	var stats StorageStats
	if err := c.doJSON(ctx, "GET", "/api/admin/stats", nil, &stats); err != nil {
		return StorageStats{}, err
	}
	return stats, nil
}

// AuditLogs fetches the recent admin audit trail.
func (c *Client) AuditLogs(ctx context.Context) ([]AuditLogEntry, error) {
	var logs []AuditLogEntry
	if err := c.doJSON(ctx, "GET", "/api/admin/audit-logs", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
