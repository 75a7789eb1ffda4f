package dvbsub

// parseEDS handles an End of Display Set segment: it carries no payload and
// only matters as the INCOMPLETE -> COMPLETE transition that hands the
// composed page to the renderer.
func parseEDS(db *Database) error {
	if db.Page().State == PageIncomplete {
		db.CommitPage()
	}
	return nil
}
