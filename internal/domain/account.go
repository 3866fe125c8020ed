package domain

// Account is a Business Profile account, e.g.
// {"name": "accounts/123", "accountName": "Joe's", "type": "PERSONAL"}.
type Account = Record

// Location is a single business listing owned by an account. Locations
// returned by Manager.GetAllLocations also carry AccountNameKey and
// AccountTypeKey.
type Location = Record

// Review is a customer review of a location. An owner reply, when present,
// is held under "reviewReply".
type Review = Record
