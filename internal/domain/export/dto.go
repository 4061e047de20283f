package export

// Row types are rendered with gocsv; the csv tags are the column headers.
// Amounts are pre-formatted to two decimals.

type BankPaymentRow struct {
	EmployeeCode  string `csv:"employee_code"`
	EmployeeName  string `csv:"employee_name"`
	AccountHolder string `csv:"account_holder"`
	BankName      string `csv:"bank_name"`
	AccountNumber string `csv:"account_number"`
	BranchCode    string `csv:"branch_code"`
	Amount        string `csv:"amount"`
	Reference     string `csv:"reference"`
}

type AccountantRow struct {
	RunStatus      string `csv:"run_status"`
	Period         string `csv:"period"`
	EmployeeCode   string `csv:"employee_code"`
	EmployeeName   string `csv:"employee_name"`
	BaseSalary     string `csv:"base_salary"`
	Additions      string `csv:"additions"`
	Gross          string `csv:"gross"`
	FringeBenefits string `csv:"fringe_benefits"`
	TaxableIncome  string `csv:"taxable_income"`
	PAYE           string `csv:"paye"`
	MedicalCredit  string `csv:"medical_credit"`
	EmployeeUIF    string `csv:"employee_uif"`
	Retirement     string `csv:"retirement"`
	MedicalAid     string `csv:"medical_aid"`
	Garnishees     string `csv:"garnishees"`
	Net            string `csv:"net"`
	EmployerUIF    string `csv:"employer_uif"`
	SDL            string `csv:"sdl"`
	EmployerCost   string `csv:"employer_cost"`
}

type DeclarationRow struct {
	Period        string `csv:"period"`
	TaxYear       int    `csv:"tax_year"`
	RunStatus     string `csv:"run_status"`
	EmployeeCount int    `csv:"employee_count"`
	PAYE          string `csv:"paye"`
	EmployeeUIF   string `csv:"employee_uif"`
	EmployerUIF   string `csv:"employer_uif"`
	UIF           string `csv:"uif_total"`
	SDL           string `csv:"sdl"`
	TotalDue      string `csv:"total_due"`
}

type ReconciliationRow struct {
	EmployeeCode       string `csv:"employee_code"`
	EmployeeName       string `csv:"employee_name"`
	TaxReferenceNumber string `csv:"tax_reference_number"`
	Gross              string `csv:"gross"`
	Taxable            string `csv:"taxable"`
	PAYE               string `csv:"paye"`
	EmployeeUIF        string `csv:"employee_uif"`
	EmployerUIF        string `csv:"employer_uif"`
	SDL                string `csv:"sdl"`
	Retirement         string `csv:"retirement"`
	MedicalAid         string `csv:"medical_aid"`
}

type CertificateRow struct {
	TaxYear            int    `csv:"tax_year"`
	EmployeeCode       string `csv:"employee_code"`
	EmployeeName       string `csv:"employee_name"`
	TaxReferenceNumber string `csv:"tax_reference_number"`
	GrossRemuneration  string `csv:"gross_remuneration"`
	TaxableIncome      string `csv:"taxable_income"`
	FringeBenefits     string `csv:"fringe_benefits"`
	PAYE               string `csv:"paye"`
	UIF                string `csv:"uif"`
	Retirement         string `csv:"retirement"`
	MedicalAid         string `csv:"medical_aid"`
	MedicalTaxCredits  string `csv:"medical_tax_credits"`
}
