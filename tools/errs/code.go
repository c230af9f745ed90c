package errs

const ServerInternalError = 9000

// auth
var (
	ErrSessionRequired = NewCodeError(1001, "SESSION_REQUIRED")
	ErrInvalidSession  = NewCodeError(1002, "INVALID_SESSIONID")
	ErrUserNotFound    = NewCodeError(1003, "USER_NOT_FOUND")
	ErrWrongPassword   = NewCodeError(1004, "WRONG_PASSWORD")
	ErrPasswordFormat  = NewCodeError(1005, "INVALID_PASSWORD_FORMAT")
)

// validation
var (
	ErrMessageTooShort     = NewCodeError(2001, "MESSAGE_TOO_SHORT")
	ErrInvalidDestination  = NewCodeError(2002, "INVALID_DESTINATION")
	ErrInvalidSourceLang   = NewCodeError(2003, "INVALID_SOURCE_LANG")
	ErrInvalidTargetLang   = NewCodeError(2004, "INVALID_TARGET_LANG")
	ErrInvalidLangCode     = NewCodeError(2005, "INVALID_LANG_CODE")
	ErrUsernameTooShort    = NewCodeError(2006, "USERNAME_TOO_SHORT")
	ErrPasswordTooShort    = NewCodeError(2007, "PASSWORD_TOO_SHORT")
	ErrForbiddenCharacters = NewCodeError(2008, "FORBIDDEN_CHARACTERS")
	ErrQueryTooShort       = NewCodeError(2009, "QUERY_TOO_SHORT")
	ErrInvalidProperty     = NewCodeError(2010, "INVALID_PROPERTY")
	ErrInvalidAction       = NewCodeError(2011, "INVALID_ACTION")
	ErrInvalidRequest      = NewCodeError(2012, "INVALID_REQUEST")
	ErrInvalidMessageID    = NewCodeError(2013, "INVALID_MESSAGE_ID")
	ErrAttachmentNotFound  = NewCodeError(2014, "ATTACHMENT_NOT_FOUND")
	ErrFileTooLarge        = NewCodeError(2015, "FILE_TOO_LARGE")
	ErrInvalidStatus       = NewCodeError(2016, "INVALID_STATUS")
)

// translation
var (
	ErrTranslator = NewCodeError(3001, "TRANSLATOR_ERROR")
)

// not found
var (
	ErrRoomNotFound        = NewCodeError(4001, "ROOM_NOT_FOUND")
	ErrInviteeNotFound     = NewCodeError(4002, "INVITEE_NOT_FOUND")
	ErrInvitationNotFound  = NewCodeError(4003, "INVITATION_NOT_FOUND")
	ErrJoinRequestNotFound = NewCodeError(4004, "JOIN_REQUEST_NOT_FOUND")
	ErrRequesterNotFound   = NewCodeError(4005, "REQUESTER_ACCOUNT_NOT_FOUND")
	ErrRecordNotFound      = NewCodeError(4006, "RECORD_NOT_FOUND")
)

// forbidden
var (
	ErrRoomMembershipRequired = NewCodeError(5001, "ROOM_MEMBERSHIP_REQUIRED")
	ErrRoomOwnershipRequired  = NewCodeError(5002, "ROOM_OWNERSHIP_REQUIRED")
	ErrInvitingPermission     = NewCodeError(5003, "INVITING_PERMISSION_REQUIRED")
	ErrInvitedPrivilege       = NewCodeError(5004, "INVITED_PRIVILEGE_NEEDED")
)

// conflict
var (
	ErrUserAlreadyExists   = NewCodeError(6001, "USER_ALREADY_EXISTS")
	ErrInviteeAlreadyAdded = NewCodeError(6002, "INVITEE_ALREADY_ADDED")
	ErrAlreadyJoined       = NewCodeError(6003, "ALREADY_JOINED")
)

var ErrInternal = NewCodeError(ServerInternalError, "INTERNAL_ERROR")
