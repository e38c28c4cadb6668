package models

type Doctor struct {
	ID              string      `json:"id" bson:"_id,omitempty"`
	Name            string      `json:"name" bson:"name"`
	Email           string      `json:"email" bson:"email"`
	Specialization  string      `json:"specialization,omitempty" bson:"specialization,omitempty"`
	ConsultationFee float64     `json:"fees" bson:"fees"`
	BankDetails     BankDetails `json:"bankDetails" bson:"bankDetails"`
	TimeModel       `bson:",inline"`
}

type BankDetails struct {
	AccountHolderName string `json:"accountHolderName,omitempty" bson:"accountHolderName,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty" bson:"accountNumber,omitempty"`
	IFSCCode          string `json:"ifscCode,omitempty" bson:"ifscCode,omitempty"`
	BankName          string `json:"bankName,omitempty" bson:"bankName,omitempty"`
	UPIID             string `json:"upiId,omitempty" bson:"upiId,omitempty"`
}

func (b BankDetails) HasPayoutTarget() bool {
	return b.AccountNumber != "" || b.UPIID != ""
}
