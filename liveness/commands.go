// Package liveness implements the active challenge session: command
// sequencing, pose verdicts, blink latching and the session state machine.
package liveness

import (
	"math"
	"math/rand"

	"github.com/canteen-pay/meal-go/model"
)

const (
	// yawDeltaDeg - head must turn at least this far from the anchor
	yawDeltaDeg = 15.0
	// rollDeltaDeg - head must tilt at least this far from the anchor
	rollDeltaDeg = 12.0
)

var commandTexts = map[model.CommandType]string{
	model.CommandTurnLeft:  "Поверните голову влево",
	model.CommandTurnRight: "Поверните голову вправо",
	model.CommandTilt:      "Наклоните голову к плечу",
}

var commandPool = []model.CommandType{
	model.CommandTurnLeft,
	model.CommandTurnRight,
	model.CommandTilt,
}

// CommandText returns the on-screen instruction for a command type
func CommandText(t model.CommandType) string {
	return commandTexts[t]
}

// sampleCommands picks k in {2,3} commands without replacement
func sampleCommands() model.CommandList {
	k := 2 + rand.Intn(2)
	perm := rand.Perm(len(commandPool))

	commands := make(model.CommandList, 0, k)
	for _, i := range perm[:k] {
		t := commandPool[i]
		commands = append(commands, model.Command{Type: t, Text: commandTexts[t]})
	}
	return commands
}

// satisfied evaluates the command predicate relative to the anchor pose
func satisfied(cmd model.Command, anchor, pose model.Pose) bool {
	switch cmd.Type {
	case model.CommandTurnLeft:
		return pose.Yaw <= anchor.Yaw-yawDeltaDeg
	case model.CommandTurnRight:
		return pose.Yaw >= anchor.Yaw+yawDeltaDeg
	case model.CommandTilt:
		return math.Abs(pose.Roll-anchor.Roll) >= rollDeltaDeg
	}
	return false
}
