package world

// Name tables for city generation. Districts combine a base name with a
// venue list; people combine first and last names independently, so the
// pools stay small while the combinations stay fresh.

var districtNames = []string{
	"Downtown",
	"The Docks",
	"Riverside",
	"Old Quarter",
	"Midtown",
	"Eastgate",
	"Harbor Point",
	"The Heights",
	"Fairview",
	"Industrial Row",
}

// venueNames are templated with the district name where marked.
var venueNames = []string{
	"%s Transit Station",
	"%s Medical Clinic",
	"%s Public Library",
	"%s Community Center",
	"%s Power Substation",
	"%s Storage Facility",
	"%s Parking Structure",
	"The %s Diner",
}

var firstNames = []string{
	"Marcy", "Grant", "Carly", "Trevor", "Philip", "David", "Jeff",
	"Kathryn", "Grace", "Ellis", "Ray", "Vincent", "Simon", "Naomi",
	"Walt", "Dawn", "Jim", "Hall", "Luca", "Yates", "Ken", "Rick",
	"Beth", "Joanne", "Patricia", "Oscar", "Wendy", "Aleksander",
}

var lastNames = []string{
	"Warton", "MacLaren", "Shannon", "Holden", "Pearson", "Mailer",
	"Bishop", "Forbes", "Day", "Durham", "Boyd", "Ingram", "Carter",
	"Hall", "Sosa", "Ortiz", "Yuen", "Vasquez", "Teslia", "Corrigan",
	"Marcks", "Delaney", "Whitfield", "Osei", "Lindqvist", "Romero",
}

var occupations = []string{
	"Librarian", "Paramedic", "Social Worker", "Line Cook", "Electrician",
	"High School Teacher", "Bus Driver", "Security Guard", "Nurse",
	"Accountant", "Mechanic", "Pharmacist", "Barista", "Janitor",
	"Software Developer", "Postal Carrier", "Bartender", "Physiotherapist",
}
