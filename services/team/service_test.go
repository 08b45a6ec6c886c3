package team

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prdhub/agentadmin/models"
	"github.com/prdhub/agentadmin/services"
)

type fakeTeamRepo struct {
	teams map[uuid.UUID]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[uuid.UUID]*models.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, services.ErrTeamNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) GetByInviteCode(_ context.Context, inviteCode string) (*models.Team, error) {
	for _, team := range r.teams {
		if team.InviteCode == inviteCode {
			return team, nil
		}
	}
	return nil, services.ErrTeamNotFound
}

func (r *fakeTeamRepo) List(_ context.Context, _, _ int) ([]*models.Team, error) {
	var out []*models.Team
	for _, team := range r.teams {
		out = append(out, team)
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.teams, id)
	return nil
}

func newTestService() *Service {
	return NewService(newFakeTeamRepo(), zap.NewNop())
}

func owner() models.TeamMember {
	return models.TeamMember{
		UserID:      uuid.New(),
		DisplayName: "alex",
		Role:        models.TeamRoleOwner,
	}
}

func TestCreateTeam(t *testing.T) {
	svc := newTestService()

	team, err := svc.Create(context.Background(), "platform", owner())
	require.NoError(t, err)

	assert.Equal(t, "platform", team.Name)
	assert.Len(t, team.InviteCode, 8)
	require.Len(t, team.Members, 1)
	assert.Equal(t, models.TeamRoleOwner, team.Members[0].Role)
	assert.Equal(t, 1, team.MemberCount)
}

func TestCreateTeamRequiresName(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), "", owner())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestInviteCodesAreUnique(t *testing.T) {
	svc := newTestService()

	first, err := svc.Create(context.Background(), "one", owner())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "two", owner())
	require.NoError(t, err)

	assert.NotEqual(t, first.InviteCode, second.InviteCode)
}

func TestJoinByInviteCode(t *testing.T) {
	svc := newTestService()

	team, err := svc.Create(context.Background(), "platform", owner())
	require.NoError(t, err)

	joined, err := svc.Join(context.Background(), team.InviteCode, models.TeamMember{
		UserID:      uuid.New(),
		DisplayName: "sam",
		// A join request cannot claim a privileged role
		Role: models.TeamRoleOwner,
	})
	require.NoError(t, err)

	require.Len(t, joined.Members, 2)
	assert.Equal(t, models.TeamRoleMember, joined.Members[1].Role)
	assert.Equal(t, 2, joined.MemberCount)
}

func TestJoinIsIdempotentForExistingMember(t *testing.T) {
	svc := newTestService()

	team, err := svc.Create(context.Background(), "platform", owner())
	require.NoError(t, err)

	member := models.TeamMember{UserID: uuid.New(), DisplayName: "sam"}
	_, err = svc.Join(context.Background(), team.InviteCode, member)
	require.NoError(t, err)

	joined, err := svc.Join(context.Background(), team.InviteCode, member)
	require.NoError(t, err)
	assert.Len(t, joined.Members, 2)
}

func TestJoinUnknownInviteCode(t *testing.T) {
	svc := newTestService()

	_, err := svc.Join(context.Background(), "NOPE1234", models.TeamMember{UserID: uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTeamNotFound)
}

func TestRemoveMember(t *testing.T) {
	svc := newTestService()

	team, err := svc.Create(context.Background(), "platform", owner())
	require.NoError(t, err)

	member := models.TeamMember{UserID: uuid.New(), DisplayName: "sam"}
	_, err = svc.Join(context.Background(), team.InviteCode, member)
	require.NoError(t, err)

	updated, err := svc.RemoveMember(context.Background(), team.ID, member.UserID)
	require.NoError(t, err)
	assert.Len(t, updated.Members, 1)
	assert.Equal(t, 1, updated.MemberCount)
}

func TestRemoveOwnerRejected(t *testing.T) {
	svc := newTestService()

	teamOwner := owner()
	team, err := svc.Create(context.Background(), "platform", teamOwner)
	require.NoError(t, err)

	_, err = svc.RemoveMember(context.Background(), team.ID, teamOwner.UserID)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestRemoveUnknownMember(t *testing.T) {
	svc := newTestService()

	team, err := svc.Create(context.Background(), "platform", owner())
	require.NoError(t, err)

	_, err = svc.RemoveMember(context.Background(), team.ID, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestRename(t *testing.T) {
	svc := newTestService()

	team, err := svc.Create(context.Background(), "platform", owner())
	require.NoError(t, err)

	renamed, err := svc.Rename(context.Background(), team.ID, "platform-core")
	require.NoError(t, err)
	assert.Equal(t, "platform-core", renamed.Name)
}
