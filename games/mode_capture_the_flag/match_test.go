package mode_capture_the_flag

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lowpolygames/skirmish-server/games"
	"github.com/lowpolygames/skirmish-server/messages"
	"github.com/lowpolygames/skirmish-server/world"
	"github.com/stretchr/testify/suite"
)

var (
	redBase  = world.Point3{X: -50}
	blueBase = world.Point3{X: 50}
)

func testTeamDefs() []games.TeamDefinition {
	return []games.TeamDefinition{
		{
			ID:        messages.TeamRed,
			Name:      "Red",
			Base:      redBase,
			FlagColor: world.RGB{R: 255},
		},
		{
			ID:        messages.TeamBlue,
			Name:      "Blue",
			Base:      blueBase,
			FlagColor: world.RGB{B: 255},
		},
	}
}

type MatchTestSuite struct {
	suite.Suite
	clock     clockwork.FakeClock
	positions map[messages.PlayerID]world.Point3
	match     *Match
}

func (suite *MatchTestSuite) SetupTest() {
	suite.clock = clockwork.NewFakeClock()
	suite.positions = make(map[messages.PlayerID]world.Point3)
	match, err := NewMatch(Config{Teams: testTeamDefs()},
		games.PositionProviderFunc(func(player messages.PlayerID) (world.Point3, bool) {
			position, ok := suite.positions[player]
			return position, ok
		}), suite.clock)
	suite.Require().Nil(err, "creating match should not fail")
	suite.match = match
}

// joinAs joins the given player and puts him on the given team.
func (suite *MatchTestSuite) joinAs(player messages.PlayerID, team messages.TeamID) {
	suite.Require().NotEmpty(suite.match.OnPlayerJoin(player), "join should emit events")
	suite.Require().NotEmpty(suite.match.OnPlayerTeamSwitch(player, team), "team switch should emit events")
}

// assureCarrierInvariant asserts that for all flags a carrier is bound if and
// only if the flag is taken.
func (suite *MatchTestSuite) assureCarrierInvariant() {
	for _, flag := range suite.match.flags {
		if flag.status == FlagStatusTaken {
			suite.Assert().NotEqualValues(messages.PlayerNone, flag.carrier,
				"taken flag should have a carrier")
		} else {
			suite.Assert().EqualValues(messages.PlayerNone, flag.carrier,
				"flag that is not taken should have no carrier")
		}
	}
}

func (suite *MatchTestSuite) TestNewInvalidConfig() {
	_, err := NewMatch(Config{}, games.PositionProviderFunc(func(messages.PlayerID) (world.Point3, bool) {
		return world.Point3{}, false
	}), suite.clock)
	suite.Assert().NotNil(err, "should refuse to start with missing teams")
}

func (suite *MatchTestSuite) TestJoinDefaultsToSpectators() {
	events := suite.match.OnPlayerJoin("fear")
	suite.Require().Len(events, 1, "should emit one event")
	suite.Assert().EqualValues(messages.TeamSpectator, events[0].Team, "should join as spectator by default")
}

func (suite *MatchTestSuite) TestJoinPolicy() {
	match, err := NewMatch(Config{Teams: testTeamDefs(), JoinTeam: messages.TeamRed},
		games.PositionProviderFunc(func(messages.PlayerID) (world.Point3, bool) {
			return world.Point3{}, false
		}), suite.clock)
	suite.Require().Nil(err, "creating match should not fail")
	events := match.OnPlayerJoin("fear")
	suite.Require().Len(events, 1, "should emit one event")
	suite.Assert().EqualValues(messages.TeamRed, events[0].Team, "should join per configured policy")
}

func (suite *MatchTestSuite) TestJoinTwice() {
	suite.match.OnPlayerJoin("fear")
	suite.Assert().Empty(suite.match.OnPlayerJoin("fear"), "second join should be a no-op")
}

func (suite *MatchTestSuite) TestTeamSwitchUnknownTeam() {
	suite.match.OnPlayerJoin("fear")
	suite.Assert().Empty(suite.match.OnPlayerTeamSwitch("fear", "yellow"),
		"switch to unknown team should be a no-op")
}

// TestTakeEnemyFlag covers the blue player taking the resting red flag at the
// red base.
func (suite *MatchTestSuite) TestTakeEnemyFlag() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase

	events := suite.match.RequestAction("fear")

	suite.Require().Len(events, 1, "should emit one event")
	suite.Assert().EqualValues(games.EventFlagTaken, events[0].Kind, "should have taken the flag")
	flag := suite.match.flags[messages.TeamRed]
	suite.Assert().EqualValues(FlagStatusTaken, flag.status, "flag should be taken")
	suite.Assert().EqualValues("fear", flag.carrier, "carrier should be bound")
	suite.Assert().Equal(suite.clock.Now().Add(DefaultTakeCooldown), flag.cooldownUntil,
		"cooldown should be set")
	suite.assureCarrierInvariant()
}

func (suite *MatchTestSuite) TestTakeOwnFlag() {
	suite.joinAs("fear", messages.TeamRed)
	suite.positions["fear"] = redBase
	suite.Assert().Empty(suite.match.RequestAction("fear"), "own flag should be excluded from taking")
	suite.Assert().EqualValues(FlagStatusAtBase, suite.match.flags[messages.TeamRed].status,
		"flag should still rest at base")
}

func (suite *MatchTestSuite) TestActionAsSpectator() {
	suite.match.OnPlayerJoin("fear")
	suite.positions["fear"] = redBase
	suite.Assert().Empty(suite.match.RequestAction("fear"), "spectators should never transition flags")
}

func (suite *MatchTestSuite) TestActionWithoutKnownPosition() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.Assert().Empty(suite.match.RequestAction("fear"), "guards should fail closed without position")
}

func (suite *MatchTestSuite) TestActionOutOfRange() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = world.Point3{X: redBase.X + 10}
	suite.Assert().Empty(suite.match.RequestAction("fear"), "should not take out of pickup range")
}

// TestRequestActionIdempotent assures that a second call with no state change
// in between is a no-op due to the flag cooldown and already-taken guard.
func (suite *MatchTestSuite) TestRequestActionIdempotent() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "first call should transition")
	suite.Assert().Empty(suite.match.RequestAction("fear"), "second call should be a no-op")
	suite.assureCarrierInvariant()
}

// TestSimultaneousTakeAttempts assures that with two players racing for the
// same enemy flag exactly one take wins.
func (suite *MatchTestSuite) TestSimultaneousTakeAttempts() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.joinAs("greed", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.positions["greed"] = redBase

	first := suite.match.RequestAction("fear")
	second := suite.match.RequestAction("greed")

	suite.Require().Len(first, 1, "first attempt should win")
	suite.Assert().Empty(second, "second attempt should be rejected")
	suite.Assert().EqualValues("fear", suite.match.flags[messages.TeamRed].carrier,
		"first player should carry the flag")
	suite.assureCarrierInvariant()
}

// TestCapture covers the blue carrier reaching the blue base while the blue
// flag rests at home: blue scores and the red flag resets.
func (suite *MatchTestSuite) TestCapture() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "take should succeed")
	// Carry home.
	suite.positions["fear"] = blueBase

	events := suite.match.RequestAction("fear")

	suite.Require().Len(events, 2, "should emit capture and score events")
	suite.Assert().EqualValues(games.EventFlagCaptured, events[0].Kind, "should have captured")
	suite.Assert().EqualValues(games.EventScoreChanged, events[1].Kind, "should have scored")
	suite.Assert().EqualValues(messages.TeamBlue, events[1].Team, "blue should have scored")
	suite.Assert().Equal(1, events[1].Score, "score should be 1")
	suite.Assert().Equal(1, suite.match.teams.Score(messages.TeamBlue), "blue score should be applied")
	suite.Assert().Equal(0, suite.match.teams.Score(messages.TeamRed), "red score should be untouched")
	flag := suite.match.flags[messages.TeamRed]
	suite.Assert().EqualValues(FlagStatusAtBase, flag.status, "red flag should rest at base again")
	suite.Assert().Equal(redBase, flag.position, "red flag should be back at the red base")
	suite.assureCarrierInvariant()
}

// TestCaptureBlockedWhileOwnFlagAway assures that capturing requires the own
// flag to rest at base.
func (suite *MatchTestSuite) TestCaptureBlockedWhileOwnFlagAway() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.joinAs("wrath", messages.TeamRed)
	suite.positions["fear"] = redBase
	suite.positions["wrath"] = blueBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "blue take should succeed")
	suite.Require().NotEmpty(suite.match.RequestAction("wrath"), "red take should succeed")
	// Blue carrier arrives home while the blue flag is away.
	suite.positions["fear"] = blueBase

	suite.Assert().Empty(suite.match.RequestAction("fear"), "capture should be blocked")
	suite.Assert().Equal(0, suite.match.teams.Score(messages.TeamBlue), "no score should be awarded")
	suite.assureCarrierInvariant()
}

// TestCarrierDeath covers the transient carrier-died status and its conversion
// by the next tick.
func (suite *MatchTestSuite) TestCarrierDeath() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "take should succeed")
	deathPosition := world.Point3{X: -20, Y: 4}
	suite.positions["fear"] = deathPosition

	suite.Assert().Empty(suite.match.OnReportDeath("fear", messages.PlayerNone),
		"death report itself should emit nothing")
	flag := suite.match.flags[messages.TeamRed]
	suite.Assert().EqualValues(FlagStatusCarrierDied, flag.status, "flag should be in transient status")
	suite.assureCarrierInvariant()

	events := suite.match.Tick()

	suite.Require().Len(events, 1, "tick should emit the drop event")
	suite.Assert().EqualValues(games.EventFlagDropped, events[0].Kind, "should have dropped")
	suite.Assert().EqualValues(FlagStatusDropped, flag.status, "tick should have converted to dropped")
	suite.Assert().Equal(deathPosition, flag.position, "flag should lie at the death position")
	suite.Assert().Equal(suite.clock.Now().Add(DefaultAutoReturnAfter), flag.autoReturnUntil,
		"auto-return deadline should be stamped by the converting tick")
	suite.Assert().Equal(suite.clock.Now().Add(DefaultDroppedPickupCooldown), flag.cooldownUntil,
		"re-pickup cooldown should be stamped by the converting tick")
	suite.assureCarrierInvariant()
}

// TestCarrierDiedNeverSurvivesTick assures that the transient status is gone
// after any tick.
func (suite *MatchTestSuite) TestCarrierDiedNeverSurvivesTick() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "take should succeed")
	suite.match.OnReportDeath("fear", messages.PlayerNone)

	suite.match.Tick()

	for _, flag := range suite.match.flags {
		suite.Assert().NotEqualValues(FlagStatusCarrierDied, flag.status,
			"carrier-died should never be observed after a tick")
	}
}

func (suite *MatchTestSuite) TestDeathReportWithoutFlag() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.Assert().Empty(suite.match.OnReportDeath("fear", messages.PlayerNone),
		"death without carried flag should be a no-op")
	suite.Assert().Empty(suite.match.OnReportDeath("unknown", messages.PlayerNone),
		"death of unknown player should be a no-op")
}

// dropRedFlagAt drives the red flag into dropped status at the given position.
func (suite *MatchTestSuite) dropRedFlagAt(position world.Point3) {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "take should succeed")
	suite.positions["fear"] = position
	suite.match.OnReportDeath("fear", messages.PlayerNone)
	suite.Require().Len(suite.match.Tick(), 1, "tick should drop the flag")
}

// TestAutoReturn covers the dropped flag returning home after the deadline
// with no score change.
func (suite *MatchTestSuite) TestAutoReturn() {
	suite.dropRedFlagAt(world.Point3{X: -20})

	suite.clock.Advance(DefaultAutoReturnAfter - time.Second)
	suite.Assert().Empty(suite.match.Tick(), "should not return before the deadline")

	suite.clock.Advance(time.Second + time.Millisecond)
	events := suite.match.Tick()

	suite.Require().Len(events, 1, "should emit the return event")
	suite.Assert().EqualValues(games.EventFlagReturned, events[0].Kind, "should have returned")
	flag := suite.match.flags[messages.TeamRed]
	suite.Assert().EqualValues(FlagStatusAtBase, flag.status, "flag should rest at base")
	suite.Assert().Equal(redBase, flag.position, "flag should be back at the red base")
	suite.Assert().Equal(0, suite.match.teams.Score(messages.TeamRed), "auto-return should not score")
	suite.Assert().Equal(0, suite.match.teams.Score(messages.TeamBlue), "auto-return should not score")
}

// TestDroppedPickupCooldown assures that the re-pickup cooldown is strict:
// exactly at the deadline is still suppressed.
func (suite *MatchTestSuite) TestDroppedPickupCooldown() {
	dropPosition := world.Point3{X: -20}
	suite.dropRedFlagAt(dropPosition)
	suite.joinAs("greed", messages.TeamBlue)
	suite.positions["greed"] = dropPosition

	suite.Assert().Empty(suite.match.RequestAction("greed"), "should be suppressed by cooldown")
	suite.clock.Advance(DefaultDroppedPickupCooldown)
	suite.Assert().Empty(suite.match.RequestAction("greed"), "exactly at the deadline should still be suppressed")
	suite.clock.Advance(time.Millisecond)
	suite.Require().NotEmpty(suite.match.RequestAction("greed"), "should be takeable after the cooldown")
	suite.assureCarrierInvariant()
}

// TestOwnTeamReturn covers an own-team player returning the dropped flag with
// no score change.
func (suite *MatchTestSuite) TestOwnTeamReturn() {
	dropPosition := world.Point3{X: -20}
	suite.dropRedFlagAt(dropPosition)
	suite.joinAs("wrath", messages.TeamRed)
	suite.positions["wrath"] = dropPosition

	events := suite.match.RequestAction("wrath")

	suite.Require().Len(events, 1, "should emit the return event")
	suite.Assert().EqualValues(games.EventFlagReturned, events[0].Kind, "should have returned")
	flag := suite.match.flags[messages.TeamRed]
	suite.Assert().EqualValues(FlagStatusAtBase, flag.status, "flag should rest at base")
	suite.Assert().Equal(0, suite.match.teams.Score(messages.TeamRed), "returning should not score")
}

// TestDisconnectDropsCarriedFlag assures immediate dropping on carrier
// disconnect, covering carriers that never produced a death report.
func (suite *MatchTestSuite) TestDisconnectDropsCarriedFlag() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "take should succeed")
	lastPosition := world.Point3{X: -30}
	suite.positions["fear"] = lastPosition

	events := suite.match.OnPlayerDisconnect("fear")

	suite.Require().Len(events, 2, "should emit leave and drop events")
	suite.Assert().EqualValues(games.EventPlayerLeft, events[0].Kind, "should have left")
	suite.Assert().EqualValues(games.EventFlagDropped, events[1].Kind, "should have dropped")
	flag := suite.match.flags[messages.TeamRed]
	suite.Assert().EqualValues(FlagStatusDropped, flag.status, "flag should be dropped immediately")
	suite.Assert().Equal(lastPosition, flag.position, "flag should lie at the last known position")
	suite.assureCarrierInvariant()
}

func (suite *MatchTestSuite) TestDisconnectUnknownPlayer() {
	suite.Assert().Empty(suite.match.OnPlayerDisconnect("unknown"), "should be a no-op")
}

// TestStatusRoundTrip assures that a no-op tick with zero elapsed time does
// not change the observable state.
func (suite *MatchTestSuite) TestStatusRoundTrip() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.Require().NotEmpty(suite.match.RequestAction("fear"), "take should succeed")

	before := suite.match.Status()
	suite.Assert().Empty(suite.match.Tick(), "tick with zero elapsed time should be a no-op")
	after := suite.match.Status()

	suite.Assert().Equal(before, after, "status should be identical")
}

func (suite *MatchTestSuite) TestStatusContents() {
	suite.joinAs("fear", messages.TeamBlue)
	status := suite.match.Status()
	suite.Require().Len(status.Teams, 2, "should contain only the scoring teams")
	suite.Assert().EqualValues(messages.TeamRed, status.Teams[0].ID, "teams should keep registration order")
	suite.Assert().EqualValues(messages.TeamBlue, status.Teams[1].ID, "teams should keep registration order")
	suite.Require().NotNil(status.Teams[0].Flag, "teams should carry their flag view")
	suite.Assert().EqualValues(FlagStatusAtBase, FlagStatus(status.Teams[0].Flag.Status),
		"red flag should rest at base")
	suite.Assert().Len(status.Teams[1].Players, 1, "blue should have one player")
}

func (suite *MatchTestSuite) TestShutDown() {
	suite.joinAs("fear", messages.TeamBlue)
	suite.positions["fear"] = redBase
	suite.match.ShutDown()
	suite.Assert().Empty(suite.match.RequestAction("fear"), "actions after shutdown should be no-ops")
	suite.Assert().Empty(suite.match.Tick(), "ticks after shutdown should be no-ops")
	suite.Assert().Empty(suite.match.OnPlayerJoin("greed"), "joins after shutdown should be no-ops")
	suite.Assert().EqualValues(messages.MatchPhaseEnd, suite.match.Status().MatchPhase,
		"phase should be end")
}

func (suite *MatchTestSuite) TestLeadingTeamTieBreak() {
	suite.Assert().EqualValues(messages.TeamRed, suite.match.LeadingTeam(),
		"tie should go to the first registered team")
}

func TestMatch(t *testing.T) {
	suite.Run(t, new(MatchTestSuite))
}
