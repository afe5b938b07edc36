package domain

import (
	"time"
)

// Asesi status values. Status and IsBlocked are independent axes: a blocked
// asesi keeps its verification status.
const (
	StatusBelumTerverifikasi = "belum terverifikasi"
	StatusTerverifikasi      = "terverifikasi"
	StatusKompeten           = "kompeten"
	StatusBelumKompeten      = "belum kompeten"
)

// Statuses lists every value the asesi status column may take.
var Statuses = []string{
	StatusBelumTerverifikasi,
	StatusTerverifikasi,
	StatusKompeten,
	StatusBelumKompeten,
}

const (
	DocumentsStatusDefault   = "Belum Lengkap"
	CertificateStatusDefault = "Belum Dicetak"
)

type AsesiProfile struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"userId"`
	FullName           string     `json:"fullName"`
	PhoneNumber        *string    `json:"phoneNumber"`
	Address            *string    `json:"address"`
	KTPNumber          string     `json:"ktpNumber"`
	RegistrationNumber string     `json:"registrationNumber"`
	Education          *string    `json:"education"`
	Status             string     `json:"status"`
	IsBlocked          bool       `json:"isBlocked"`
	SchemeID           *int64     `json:"schemeId"`
	SchemeName         *string    `json:"schemeName,omitempty"`
	AssessmentDate     *time.Time `json:"assessmentDate"`
	PlottingAsesor     *string    `json:"plottingAsesor"`
	DocumentsStatus    string     `json:"documentsStatus"`
	CertificateStatus  string     `json:"certificateStatus"`
	PhotoURL           *string    `json:"photoUrl"`
	Username           string     `json:"username,omitempty"`
	Email              string     `json:"email,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type AsesorProfile struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	FullName    string `json:"fullName"`
	RegNumber   string `json:"regNumber"`
	IsCertified bool   `json:"isCertified"`
}

type AdminProfile struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"userId"`
	FullName     string  `json:"fullName"`
	AvatarURL    *string `json:"avatarUrl"`
	NomorInduk   *string `json:"nomorInduk"`
	NomorLisensi *string `json:"nomorLisensi"`
	MasaBerlaku  *string `json:"masaBerlaku"`
	NomorKTP     *string `json:"nomorKtp"`
	TTL          *string `json:"ttl"`
	Alamat       *string `json:"alamat"`
	NomorHP      *string `json:"nomorHp"`
	Email        *string `json:"email"`
	Pendidikan   *string `json:"pendidikan"`
}

// UserProfile is the assembled view of an account plus the single profile
// variant matching its role. Profile holds exactly one of AsesiProfileData,
// AsesorProfileData or AdminProfileData; consumers branch on RoleName.
type UserProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   int64  `json:"roleId"`
	RoleName string `json:"roleName"`
	Profile  any    `json:"profileData"`
}

// Leaf fields are pointers: an account whose profile row is missing still
// assembles, with null leaves.
type AsesiProfileData struct {
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	KTPNumber   *string `json:"ktpNumber"`
}

type AsesorProfileData struct {
	FullName    *string `json:"fullName"`
	RegNumber   *string `json:"regNumber"`
	IsCertified *bool   `json:"isCertified"`
}

type AdminProfileData struct {
	FullName     *string `json:"fullName"`
	AvatarURL    *string `json:"avatarUrl"`
	NomorInduk   *string `json:"nomorInduk"`
	NomorLisensi *string `json:"nomorLisensi"`
	MasaBerlaku  *string `json:"masaBerlaku"`
	NomorKTP     *string `json:"nomorKtp"`
	TTL          *string `json:"ttl"`
	Alamat       *string `json:"alamat"`
	NomorHP      *string `json:"nomorHp"`
	Email        *string `json:"email"`
	Pendidikan   *string `json:"pendidikan"`
}
