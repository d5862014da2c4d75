package domain

// RoomID names a transport-level broadcast group. Rooms have no storage of
// their own: they are re-derived from persisted entities and rebuilt empty
// on every process restart.
type RoomID string

// RoomForGroup derives the broadcast room of a group.
func RoomForGroup(groupID string) RoomID {
	return RoomID("group_" + groupID)
}

// RoomForUser derives the private room every authenticated connection of a
// user joins, so multi-device delivery stays uniform.
func RoomForUser(userID string) RoomID {
	return RoomID("user_" + userID)
}
