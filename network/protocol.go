package network

// Packet message ids. 1xx are client requests, 3xx are server pushes.
const (
	MsgTypeHeartbeat      = 1
	MsgTypeRegister       = 100
	MsgTypeCreateGame     = 101
	MsgTypeJoinGame       = 102
	MsgTypeStartGame      = 103
	MsgTypePlayCard       = 104
	MsgTypeAllPlayedCheck = 105
	MsgTypeResultAction   = 106

	MsgTypeTableState  = 301
	MsgTypePlayerState = 302
	MsgTypePlayerError = 303
)

// Table broadcast envelope types, sent with the full game snapshot.
const (
	TableMsgCreateNewGame   = "CREATE_NEW_GAME"
	TableMsgPlayerJoin      = "TABLE_PLAYER_JOIN"
	TableMsgStartGame       = "START_GAME"
	TableMsgNewPlayedCard   = "NEW_PLAYER_PLAYED_CARD"
	TableMsgFlipCardOrder   = "FLIP_CARD_ORDER"
	TableMsgNewResultAction = "NEW_RESULT_ACTION"
	TableMsgNewRound        = "NEW_ROUND"
	TableMsgEndGameResults  = "END_GAME_RESULTS"
)

// Per-player envelope types, sent with that player's snapshot.
const (
	PlayerMsgLoggedInGame   = "PLAYER_LOGGED_IN_GAME"
	PlayerMsgStartGame      = "START_GAME"
	PlayerMsgCardPlayed     = "CARD_PLAYED"
	PlayerMsgNewRound       = "NEW_ROUND"
	PlayerMsgEndGameResults = "END_GAME_RESULTS"

	PlayerMsgWrongID = "WRONG_ID_PLAYER"
)
