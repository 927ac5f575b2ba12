package database

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
)

// Tables 由迁移创建的表
var Tables = []string{"gyms", "timings", "posts", "timing_post", "user_profiles"}

// TableCounts 验证表是否存在并统计行数
func (s *SQLDatabase) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(Tables))
	for _, table := range Tables {
		var count int
		// table names come from the fixed list above
		if err := s.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
			return counts, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

var kvPassword = regexp.MustCompile(`(?i)(password=)(\S+)`)

// MaskDSN 隐藏连接字符串中的密码
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	return kvPassword.ReplaceAllString(dsn, "${1}xxxxx")
}
