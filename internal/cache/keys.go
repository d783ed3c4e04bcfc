package cache

// Cache key builders, kept together so key shapes stay greppable.

func UserKey(userID int64) string {
	return Key("users", userID)
}

func PreferenceKey(userID int64, category, name string) string {
	return Key("preferences", userID, category, name)
}
