package common

import "fmt"

func RedisKeyDrawLock(userID string) string {
	return fmt.Sprintf("drawlock:%s", userID)
}

func RedisKeyDrawHistory(userID string) string {
	return fmt.Sprintf("drawhistory:%s", userID)
}
