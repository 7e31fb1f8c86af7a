// Package seed creates demo studies for development and testing.
package seed

import (
	"net/url"
	"strings"

	"truthfeed/internal/models"
	"truthfeed/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var sourceStyles = []string{"tabloid", "academic", "satirical", "local news", "influencer", "press agency"}

// Factory builds fake entities. It never touches the database.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. The same seed yields the same entities.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Source builds a fake persona with a random truthfulness ratio.
func (f *Factory) Source() *models.Source {
	name := f.faker.Company()
	return &models.Source{
		MsID:               f.faker.UUID(),
		Name:               name,
		Style:              sourceStyles[f.faker.Number(0, len(sourceStyles)-1)],
		MaxPosts:           f.faker.Number(5, 20),
		TruePostPercentage: f.faker.Number(0, 100),
		Avatar:             avatarURL(name),
	}
}

// Participant builds a join request for studyID.
func (f *Factory) Participant(studyID uint, msID, followers, credibility int) service.JoinStudyInput {
	username := f.faker.Username()
	return service.JoinStudyInput{
		StudyID:            studyID,
		MsID:               msID,
		Username:           username,
		Avatar:             avatarURL(username),
		InitialFollowers:   followers,
		InitialCredibility: credibility,
	}
}

func avatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/identicon/svg?seed=" + url.QueryEscape(strings.ReplaceAll(seed, " ", "-"))
}
