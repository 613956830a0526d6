package proto

import "google.golang.org/protobuf/encoding/protowire"

// Entry is a work log row as served by the store, owner display joined in.
type Entry struct {
	Id             string
	OwnerId        string
	LogDate        string
	Description    string
	Category       string
	CreatedAt      int64
	HasOwner       bool
	OwnerName      string
	OwnerStudyYear int32
}

func (m *Entry) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.OwnerId)
	b = appendString(b, 3, m.LogDate)
	b = appendString(b, 4, m.Description)
	b = appendString(b, 5, m.Category)
	b = appendInt64(b, 6, m.CreatedAt)
	b = appendBool(b, 7, m.HasOwner)
	b = appendString(b, 8, m.OwnerName)
	return appendInt32(b, 9, m.OwnerStudyYear)
}

func (m *Entry) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		return consumeString(typ, b, &m.OwnerId)
	case 3:
		return consumeString(typ, b, &m.LogDate)
	case 4:
		return consumeString(typ, b, &m.Description)
	case 5:
		return consumeString(typ, b, &m.Category)
	case 6:
		return consumeInt64(typ, b, &m.CreatedAt)
	case 7:
		return consumeBool(typ, b, &m.HasOwner)
	case 8:
		return consumeString(typ, b, &m.OwnerName)
	case 9:
		return consumeInt32(typ, b, &m.OwnerStudyYear)
	}
	return skipField(num, typ, b)
}

func (m *Entry) GetId() string {
	if m == nil {
		return ""
	}
	return m.Id
}

type Profile struct {
	Id        string
	FullName  string
	StudyYear int32
	Email     string
}

func (m *Profile) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.FullName)
	b = appendInt32(b, 3, m.StudyYear)
	return appendString(b, 4, m.Email)
}

func (m *Profile) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		return consumeString(typ, b, &m.FullName)
	case 3:
		return consumeInt32(typ, b, &m.StudyYear)
	case 4:
		return consumeString(typ, b, &m.Email)
	}
	return skipField(num, typ, b)
}

type Identity struct {
	Id       string
	Username string
	FullName string
	Email    string
}

func (m *Identity) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.Username)
	b = appendString(b, 3, m.FullName)
	return appendString(b, 4, m.Email)
}

func (m *Identity) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		return consumeString(typ, b, &m.Username)
	case 3:
		return consumeString(typ, b, &m.FullName)
	case 4:
		return consumeString(typ, b, &m.Email)
	}
	return skipField(num, typ, b)
}

// ChangeEvent is one push notification on a Subscribe stream. New is set for
// INSERT, Old for DELETE.
type ChangeEvent struct {
	Type  string
	Table string
	New   *Entry
	Old   *Entry
}

func (m *ChangeEvent) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Type)
	b = appendString(b, 2, m.Table)
	if m.New != nil {
		b = appendMessage(b, 3, m.New)
	}
	if m.Old != nil {
		b = appendMessage(b, 4, m.Old)
	}
	return b
}

func (m *ChangeEvent) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Type)
	case 2:
		return consumeString(typ, b, &m.Table)
	case 3:
		m.New = &Entry{}
		return consumeMessage(typ, b, m.New)
	case 4:
		m.Old = &Entry{}
		return consumeMessage(typ, b, m.Old)
	}
	return skipField(num, typ, b)
}

// ---- auth ----

type RegisterUserRequest struct {
	Username string
	Salt     []byte
	Verifier []byte
	FullName string
	Email    string
}

func (m *RegisterUserRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Username)
	b = appendBytes(b, 2, m.Salt)
	b = appendBytes(b, 3, m.Verifier)
	b = appendString(b, 4, m.FullName)
	return appendString(b, 5, m.Email)
}

func (m *RegisterUserRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Username)
	case 2:
		return consumeBytes(typ, b, &m.Salt)
	case 3:
		return consumeBytes(typ, b, &m.Verifier)
	case 4:
		return consumeString(typ, b, &m.FullName)
	case 5:
		return consumeString(typ, b, &m.Email)
	}
	return skipField(num, typ, b)
}

type RegisterUserResponse struct {
	UserId string
}

func (m *RegisterUserResponse) appendWire(b []byte) []byte {
	return appendString(b, 1, m.UserId)
}

func (m *RegisterUserResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.UserId)
	}
	return skipField(num, typ, b)
}

type GetSaltRequest struct {
	Username string
}

func (m *GetSaltRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Username)
}

func (m *GetSaltRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.Username)
	}
	return skipField(num, typ, b)
}

type GetSaltResponse struct {
	Salt []byte
}

func (m *GetSaltResponse) appendWire(b []byte) []byte {
	return appendBytes(b, 1, m.Salt)
}

func (m *GetSaltResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeBytes(typ, b, &m.Salt)
	}
	return skipField(num, typ, b)
}

type LoginRequest struct {
	Username          string
	VerifierCandidate []byte
}

func (m *LoginRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Username)
	return appendBytes(b, 2, m.VerifierCandidate)
}

func (m *LoginRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Username)
	case 2:
		return consumeBytes(typ, b, &m.VerifierCandidate)
	}
	return skipField(num, typ, b)
}

type LoginResponse struct {
	AccessToken  string
	RefreshToken string
}

func (m *LoginResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.AccessToken)
	return appendString(b, 2, m.RefreshToken)
}

func (m *LoginResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.AccessToken)
	case 2:
		return consumeString(typ, b, &m.RefreshToken)
	}
	return skipField(num, typ, b)
}

type RefreshTokenResponse struct {
	AccessToken  string
	RefreshToken string
}

func (m *RefreshTokenResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.AccessToken)
	return appendString(b, 2, m.RefreshToken)
}

func (m *RefreshTokenResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.AccessToken)
	case 2:
		return consumeString(typ, b, &m.RefreshToken)
	}
	return skipField(num, typ, b)
}

type RefreshTokenRequest struct {
	RefreshToken string
}

func (m *RefreshTokenRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.RefreshToken)
}

func (m *RefreshTokenRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.RefreshToken)
	}
	return skipField(num, typ, b)
}

type WhoAmIRequest struct{}

func (m *WhoAmIRequest) appendWire(b []byte) []byte { return b }

func (m *WhoAmIRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return skipField(num, typ, b)
}

type WhoAmIResponse struct {
	Identity *Identity
}

func (m *WhoAmIResponse) appendWire(b []byte) []byte {
	if m.Identity != nil {
		b = appendMessage(b, 1, m.Identity)
	}
	return b
}

func (m *WhoAmIResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		m.Identity = &Identity{}
		return consumeMessage(typ, b, m.Identity)
	}
	return skipField(num, typ, b)
}

type PingRequest struct{}

func (m *PingRequest) appendWire(b []byte) []byte { return b }

func (m *PingRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return skipField(num, typ, b)
}

type PingResponse struct {
	Status string
}

func (m *PingResponse) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Status)
}

func (m *PingResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.Status)
	}
	return skipField(num, typ, b)
}

func (m *PingResponse) GetStatus() string {
	if m == nil {
		return ""
	}
	return m.Status
}

// ---- profiles ----

type GetProfileRequest struct {
	Id string
}

func (m *GetProfileRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Id)
}

func (m *GetProfileRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.Id)
	}
	return skipField(num, typ, b)
}

type GetProfileResponse struct {
	Profile *Profile
}

func (m *GetProfileResponse) appendWire(b []byte) []byte {
	if m.Profile != nil {
		b = appendMessage(b, 1, m.Profile)
	}
	return b
}

func (m *GetProfileResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		m.Profile = &Profile{}
		return consumeMessage(typ, b, m.Profile)
	}
	return skipField(num, typ, b)
}

type UpsertProfileResponse struct {
	Profile *Profile
}

func (m *UpsertProfileResponse) appendWire(b []byte) []byte {
	if m.Profile != nil {
		b = appendMessage(b, 1, m.Profile)
	}
	return b
}

func (m *UpsertProfileResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		m.Profile = &Profile{}
		return consumeMessage(typ, b, m.Profile)
	}
	return skipField(num, typ, b)
}

type UpsertProfileRequest struct {
	StudyYear int32
}

func (m *UpsertProfileRequest) appendWire(b []byte) []byte {
	return appendInt32(b, 1, m.StudyYear)
}

func (m *UpsertProfileRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeInt32(typ, b, &m.StudyYear)
	}
	return skipField(num, typ, b)
}

// ---- entries ----

type ListEntriesByOwnerRequest struct {
	OwnerId string
}

func (m *ListEntriesByOwnerRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.OwnerId)
}

func (m *ListEntriesByOwnerRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.OwnerId)
	}
	return skipField(num, typ, b)
}

type ListRecentEntriesRequest struct {
	Limit int32
}

func (m *ListRecentEntriesRequest) appendWire(b []byte) []byte {
	return appendInt32(b, 1, m.Limit)
}

func (m *ListRecentEntriesRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeInt32(typ, b, &m.Limit)
	}
	return skipField(num, typ, b)
}

type ListEntriesResponse struct {
	Entries []*Entry
}

func (m *ListEntriesResponse) appendWire(b []byte) []byte {
	for _, e := range m.Entries {
		b = appendMessage(b, 1, e)
	}
	return b
}

func (m *ListEntriesResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		e := &Entry{}
		n, err := consumeMessage(typ, b, e)
		if err != nil {
			return 0, err
		}
		m.Entries = append(m.Entries, e)
		return n, nil
	}
	return skipField(num, typ, b)
}

type InsertEntryRequest struct {
	LogDate     string
	Description string
	Category    string
}

func (m *InsertEntryRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.LogDate)
	b = appendString(b, 2, m.Description)
	return appendString(b, 3, m.Category)
}

func (m *InsertEntryRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.LogDate)
	case 2:
		return consumeString(typ, b, &m.Description)
	case 3:
		return consumeString(typ, b, &m.Category)
	}
	return skipField(num, typ, b)
}

type InsertEntryResponse struct {
	Entry *Entry
}

func (m *InsertEntryResponse) appendWire(b []byte) []byte {
	if m.Entry != nil {
		b = appendMessage(b, 1, m.Entry)
	}
	return b
}

func (m *InsertEntryResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		m.Entry = &Entry{}
		return consumeMessage(typ, b, m.Entry)
	}
	return skipField(num, typ, b)
}

type DeleteEntryRequest struct {
	Id string
}

func (m *DeleteEntryRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Id)
}

func (m *DeleteEntryRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.Id)
	}
	return skipField(num, typ, b)
}

type DeleteEntryResponse struct{}

func (m *DeleteEntryResponse) appendWire(b []byte) []byte { return b }

func (m *DeleteEntryResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return skipField(num, typ, b)
}

type SubscribeRequest struct {
	Table string
}

func (m *SubscribeRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Table)
}

func (m *SubscribeRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.Table)
	}
	return skipField(num, typ, b)
}

// ---- export ----

type GetExportUploadURLRequest struct {
	Filename string
}

func (m *GetExportUploadURLRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.Filename)
}

func (m *GetExportUploadURLRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num == 1 {
		return consumeString(typ, b, &m.Filename)
	}
	return skipField(num, typ, b)
}

type GetExportUploadURLResponse struct {
	Key    string
	PutUrl string
	GetUrl string
}

func (m *GetExportUploadURLResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Key)
	b = appendString(b, 2, m.PutUrl)
	return appendString(b, 3, m.GetUrl)
}

func (m *GetExportUploadURLResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Key)
	case 2:
		return consumeString(typ, b, &m.PutUrl)
	case 3:
		return consumeString(typ, b, &m.GetUrl)
	}
	return skipField(num, typ, b)
}
