// Package learnerprofile declares the feature flags of the learner profile page.
package learnerprofile

import "github.com/phrazzld/certs-api/internal/flags"

// Namespace holds every learner profile flag.
var Namespace = flags.NewNamespace("learner_profile")

var (
	// ShowAchievements shows achievements on the learner profile.
	ShowAchievements = Namespace.Flag("show_achievements",
		"Show achievements on the learner profile.")

	// BoostProfileVisibility increases the visibility of the profile page,
	// including the messaging that points learners to it.
	BoostProfileVisibility = Namespace.Flag("boost_visibility",
		"Increase the visibility of the profile page.")
)

// Settings is the resolved state of the learner profile flags.
type Settings struct {
	ShowAchievements       bool `json:"show_achievements"`
	BoostProfileVisibility bool `json:"boost_visibility"`
}

// SettingsFrom resolves the learner profile flags against a snapshot.
func SettingsFrom(checker flags.Checker) Settings {
	return Settings{
		ShowAchievements:       checker.IsEnabled(ShowAchievements),
		BoostProfileVisibility: checker.IsEnabled(BoostProfileVisibility),
	}
}
