package models

import "time"

// User is an account holder. Email is stored lowercased and is unique.
// GoogleID is set for accounts that signed in with Google.
type User struct {
	ID           string      `bson:"_id,omitempty" json:"id"`
	Name         string      `bson:"name" json:"name"`
	Email        string      `bson:"email" json:"email"`
	PasswordHash string      `bson:"passwordHash" json:"-"`
	GoogleID     string      `bson:"googleId,omitempty" json:"googleId,omitempty"`
	Preferences  Preferences `bson:"preferences" json:"preferences"`
	SavedFacts   []SavedFact `bson:"savedFacts" json:"savedFacts"`
	CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Preferences holds per-user display settings.
type Preferences struct {
	DefaultTheme       string             `bson:"defaultTheme" json:"defaultTheme"`
	FavoriteCategories []string           `bson:"favoriteCategories" json:"favoriteCategories"`
	Display            DisplayPreferences `bson:"factDisplayPreferences" json:"factDisplayPreferences"`
	Notifications      Notifications      `bson:"notifications" json:"notifications"`
}

type DisplayPreferences struct {
	FontSize       string `bson:"fontSize" json:"fontSize"`
	AnimationSpeed string `bson:"animationSpeed" json:"animationSpeed"`
	AutoPlay       bool   `bson:"autoPlay" json:"autoPlay"`
}

type Notifications struct {
	DailyFact     bool `bson:"dailyFact" json:"dailyFact"`
	NewCategories bool `bson:"newCategories" json:"newCategories"`
}

// DefaultPreferences returns the settings a new account starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultTheme:       "dark",
		FavoriteCategories: []string{},
		Display:            DisplayPreferences{FontSize: "medium", AnimationSpeed: "normal"},
	}
}

// SavedFact is a fact a user bookmarked, copied by value.
type SavedFact struct {
	ID       string    `bson:"id" json:"id"`
	Fact     string    `bson:"fact" json:"fact"`
	Category string    `bson:"category" json:"category"`
	Notes    string    `bson:"notes" json:"notes"`
	SavedAt  time.Time `bson:"savedAt" json:"savedAt"`
}
